package models

type UpdateAccountRequest struct {
	DisplayName string `json:"displayName"`
	Equipment   string `json:"equipment"`
	Region      string `json:"region"`
}
