package models

import (
	accountmodels "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/profile"
)

// GetAccountDetailsResponse carries the viewer's own profile and the values
// the entry editor pre-fills from it.
type GetAccountDetailsResponse struct {
	Profile       *accountmodels.UserProfile `json:"profile"`
	EntryDefaults profile.EntryDefaults      `json:"entryDefaults"`
}
