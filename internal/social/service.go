// Package social applies likes, follows and comments to the document store.
//
// Likes, follows and comment appends are set operations at the store level, so
// concurrent callers never clobber each other and retries are harmless. The
// service never predicts the post-mutation state; callers re-read it from the
// live snapshot.
package social

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"io.winapps.starlight/internal/metrics"
	"io.winapps.starlight/internal/security"
	"io.winapps.starlight/internal/store"
)

// DefaultCommenterName is used when the commenter has no display name
const DefaultCommenterName = "익명의 대원"

// Notifier delivers best-effort push notifications. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, uid, title, body string, data map[string]string)
}

// Service is the social mutator
type Service struct {
	entries   store.EntryStore
	profiles  store.ProfileStore
	notifier  Notifier
	sanitizer *security.Sanitizer
	metrics   metrics.Recorder
	logger    *zap.SugaredLogger

	now   func() time.Time
	newID func() string
}

// NewService creates the social mutator. notifier may be nil.
func NewService(entries store.EntryStore, profiles store.ProfileStore, notifier Notifier, sanitizer *security.Sanitizer, rec metrics.Recorder, logger *zap.SugaredLogger) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		entries:   entries,
		profiles:  profiles,
		notifier:  notifier,
		sanitizer: sanitizer,
		metrics:   rec,
		logger:    logger,
		now:       time.Now,
		newID:     newCommentID,
	}
}

// newCommentID returns a time-ordered unique token
func newCommentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Service) record(op string, err error) {
	if err != nil {
		s.metrics.RecordMutation(op, "error")
		return
	}
	s.metrics.RecordMutation(op, "ok")
}

func (s *Service) notify(ctx context.Context, uid, title, body string, data map[string]string) {
	if s.notifier == nil || uid == "" {
		return
	}
	s.notifier.Notify(ctx, uid, title, body, data)
}
