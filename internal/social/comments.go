package social

import (
	"context"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/session"
)

// SubmitComment appends a new comment to the entry. Blank text is rejected
// before any store call.
func (s *Service) SubmitComment(ctx context.Context, entry *models.Entry, viewer *session.Viewer, text string) (*models.Comment, error) {
	if viewer == nil {
		return nil, apperr.AuthRequired("Sign in to comment")
	}
	text = s.sanitizer.Text(text)
	if text == "" {
		return nil, apperr.Validation("Comment text is required")
	}
	if entry == nil || entry.ID == "" {
		return nil, apperr.Validation("Entry ID is required")
	}

	comment := models.Comment{
		ID:        s.newID(),
		UserID:    viewer.UID,
		UserName:  viewer.Name(DefaultCommenterName),
		Text:      text,
		CreatedAt: s.now().UnixMilli(),
	}
	err := s.entries.AppendComment(ctx, entry.ID, comment)
	s.record("comment", err)
	if err != nil {
		return nil, err
	}

	if entry.UserID != viewer.UID {
		s.notify(ctx, entry.UserID, "New comment", comment.UserName+": "+truncate(text, 80),
			map[string]string{"type": "comment", "entryId": entry.ID, "commentId": comment.ID})
	}
	return &comment, nil
}

// EditComment replaces the text of one comment, keeping length and order of
// the sequence. Only the comment's author may edit it.
//
// The comments field is rewritten as a whole. The Firestore store runs the
// rewrite in a transaction; a store without transactions would make this a
// last-writer-wins overwrite of the entire field.
func (s *Service) EditComment(ctx context.Context, entryID, commentID string, viewer *session.Viewer, newText string) ([]models.Comment, error) {
	if viewer == nil {
		return nil, apperr.AuthRequired("Sign in to edit comments")
	}
	newText = s.sanitizer.Text(newText)
	if newText == "" {
		return nil, apperr.Validation("Comment text is required")
	}
	if entryID == "" || commentID == "" {
		return nil, apperr.Validation("Entry ID and comment ID are required")
	}

	out, err := s.entries.RewriteComments(ctx, entryID, func(current []models.Comment) ([]models.Comment, error) {
		idx, err := ownedComment(current, commentID, viewer.UID)
		if err != nil {
			return nil, err
		}
		next := make([]models.Comment, len(current))
		copy(next, current)
		next[idx].Text = newText
		return next, nil
	})
	s.record("edit_comment", err)
	return out, err
}

// DeleteComment removes one comment, keeping the others in order. Only the
// comment's author may delete it.
func (s *Service) DeleteComment(ctx context.Context, entryID, commentID string, viewer *session.Viewer) ([]models.Comment, error) {
	if viewer == nil {
		return nil, apperr.AuthRequired("Sign in to delete comments")
	}
	if entryID == "" || commentID == "" {
		return nil, apperr.Validation("Entry ID and comment ID are required")
	}

	out, err := s.entries.RewriteComments(ctx, entryID, func(current []models.Comment) ([]models.Comment, error) {
		idx, err := ownedComment(current, commentID, viewer.UID)
		if err != nil {
			return nil, err
		}
		next := make([]models.Comment, 0, len(current)-1)
		next = append(next, current[:idx]...)
		return append(next, current[idx+1:]...), nil
	})
	s.record("delete_comment", err)
	return out, err
}

func ownedComment(comments []models.Comment, commentID, uid string) (int, error) {
	for i, c := range comments {
		if c.ID != commentID {
			continue
		}
		if c.UserID != uid {
			return -1, apperr.PermissionDenied("Only the author can change this comment")
		}
		return i, nil
	}
	return -1, apperr.NotFound("Comment not found")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
