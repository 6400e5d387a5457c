package social

import (
	"context"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/session"
)

// ToggleLike removes the viewer from entry.likes when present, adds them
// otherwise. It reports the membership the viewer asked for; the authoritative
// state arrives with the next snapshot.
func (s *Service) ToggleLike(ctx context.Context, entry *models.Entry, viewer *session.Viewer) (bool, error) {
	if viewer == nil {
		return false, apperr.AuthRequired("Sign in to like entries")
	}
	if entry == nil || entry.ID == "" {
		return false, apperr.Validation("Entry ID is required")
	}

	if entry.LikedBy(viewer.UID) {
		err := s.entries.RemoveLike(ctx, entry.ID, viewer.UID)
		s.record("unlike", err)
		if err != nil {
			return true, err
		}
		return false, nil
	}

	err := s.entries.AddLike(ctx, entry.ID, viewer.UID)
	s.record("like", err)
	if err != nil {
		return false, err
	}
	if entry.UserID != viewer.UID {
		s.notify(ctx, entry.UserID, "New like", viewer.Name(DefaultCommenterName)+" liked \""+entry.Title+"\"",
			map[string]string{"type": "like", "entryId": entry.ID})
	}
	return true, nil
}
