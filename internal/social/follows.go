package social

import (
	"context"
	"strings"

	"io.winapps.starlight/internal/apperr"
	"io.winapps.starlight/internal/session"
)

func (s *Service) checkFollow(targetUID string, viewer *session.Viewer) (string, error) {
	if viewer == nil {
		return "", apperr.AuthRequired("Sign in to follow users")
	}
	targetUID = strings.TrimSpace(targetUID)
	if targetUID == "" {
		return "", apperr.Validation("Target user ID is required")
	}
	if targetUID == viewer.UID {
		return "", apperr.Validation("Cannot follow yourself")
	}
	return targetUID, nil
}

// Follow adds targetUID to the viewer's following set, then tries to add the
// viewer to the target's followers. Only the first write is authoritative; a
// failure of the second is logged and never returned.
func (s *Service) Follow(ctx context.Context, targetUID string, viewer *session.Viewer) error {
	targetUID, err := s.checkFollow(targetUID, viewer)
	if err != nil {
		return err
	}

	err = s.profiles.AddFollowing(ctx, viewer.UID, targetUID)
	s.record("follow", err)
	if err != nil {
		return err
	}

	if err := s.profiles.AddFollower(ctx, targetUID, viewer.UID); err != nil {
		s.metrics.RecordSecondaryFailure("follow")
		s.logger.Warnw("could not update target followers",
			"user_uid", viewer.UID, "target_uid", targetUID, "kind", apperr.KindOf(err).String(), "error", err)
	}

	s.notify(ctx, targetUID, "New follower", viewer.Name(DefaultCommenterName)+" started following you",
		map[string]string{"type": "follow", "userId": viewer.UID})
	return nil
}

// Unfollow mirrors Follow with set removals
func (s *Service) Unfollow(ctx context.Context, targetUID string, viewer *session.Viewer) error {
	targetUID, err := s.checkFollow(targetUID, viewer)
	if err != nil {
		return err
	}

	err = s.profiles.RemoveFollowing(ctx, viewer.UID, targetUID)
	s.record("unfollow", err)
	if err != nil {
		return err
	}

	if err := s.profiles.RemoveFollower(ctx, targetUID, viewer.UID); err != nil {
		s.metrics.RecordSecondaryFailure("unfollow")
		s.logger.Warnw("could not update target followers",
			"user_uid", viewer.UID, "target_uid", targetUID, "kind", apperr.KindOf(err).String(), "error", err)
	}
	return nil
}

// ToggleFollow unfollows when the viewer's profile already follows targetUID,
// follows otherwise, and reports the requested state.
func (s *Service) ToggleFollow(ctx context.Context, targetUID string, viewer *session.Viewer) (bool, error) {
	if viewer != nil && viewer.Profile.IsFollowing(targetUID) {
		if err := s.Unfollow(ctx, targetUID, viewer); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.Follow(ctx, targetUID, viewer); err != nil {
		return false, err
	}
	return true, nil
}
