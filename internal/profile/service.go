// Package profile serves user profiles and the entry defaults derived from them.
package profile

import (
	"context"
	"strings"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/security"
	"io.winapps.starlight/internal/session"
	"io.winapps.starlight/internal/store"
)

const maxDisplayName = 50

// EntryDefaults pre-fill the editor for a new entry
type EntryDefaults struct {
	AuthorName string `json:"authorName"`
	Equipment  string `json:"equipment"`
	Location   string `json:"location"`
}

type Service struct {
	profiles  store.ProfileStore
	sanitizer *security.Sanitizer
}

func NewService(profiles store.ProfileStore, sanitizer *security.Sanitizer) *Service {
	return &Service{profiles: profiles, sanitizer: sanitizer}
}

// Me returns the viewer's own profile, creating it when it is missing
func (s *Service) Me(ctx context.Context, viewer *session.Viewer) (*models.UserProfile, error) {
	if viewer == nil {
		return nil, apperr.AuthRequired("User not authenticated")
	}
	if viewer.Profile != nil {
		return viewer.Profile, nil
	}
	return s.profiles.EnsureProfile(ctx, models.Identity{
		UID:         viewer.UID,
		Email:       viewer.Email,
		DisplayName: viewer.DisplayName,
		PhotoURL:    viewer.PhotoURL,
	})
}

// Public returns another user's profile without private fields
func (s *Service) Public(ctx context.Context, uid string) (*models.UserProfile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, apperr.Validation("User ID is required")
	}
	p, err := s.profiles.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	pub := p.Public()
	return &pub, nil
}

// Update changes the viewer's display name, equipment and region
func (s *Service) Update(ctx context.Context, viewer *session.Viewer, fields models.ProfileFields) (*models.UserProfile, error) {
	if viewer == nil {
		return nil, apperr.AuthRequired("User not authenticated")
	}
	fields.DisplayName = s.sanitizer.Text(fields.DisplayName)
	fields.Equipment = s.sanitizer.Text(fields.Equipment)
	fields.Region = s.sanitizer.Text(fields.Region)
	if fields.DisplayName == "" {
		return nil, apperr.Validation("Display name is required")
	}
	if len([]rune(fields.DisplayName)) > maxDisplayName {
		return nil, apperr.Validation("Display name is too long")
	}

	if _, err := s.Me(ctx, viewer); err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateProfile(ctx, viewer.UID, fields); err != nil {
		return nil, err
	}
	return s.profiles.GetProfile(ctx, viewer.UID)
}

// Defaults returns the editor pre-fill for the viewer
func (s *Service) Defaults(viewer *session.Viewer) EntryDefaults {
	d := EntryDefaults{AuthorName: viewer.Name("")}
	if viewer != nil && viewer.Profile != nil {
		d.Equipment = viewer.Profile.Equipment
		d.Location = viewer.Profile.Region
	}
	return d
}
