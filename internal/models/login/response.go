package models

import (
	accountmodels "io.winapps.starlight/internal/models/account"
)

type LoginResponse struct {
	UID         string                     `json:"uid"`
	Email       string                     `json:"email"`
	DisplayName string                     `json:"displayName"`
	PhotoURL    string                     `json:"photoURL"`
	Profile     *accountmodels.UserProfile `json:"profile"`
}
