// Package store wraps the document store collections used by the journal:
// journals, users and calendar_events.
package store

import (
	"context"

	models "io.winapps.starlight/internal/models/account"
)

// Collection names in the document store
const (
	JournalsCollection = "journals"
	UsersCollection    = "users"
	CalendarCollection = "calendar_events"
)

// CommentRewrite receives the current comment sequence and returns the sequence to store
type CommentRewrite func(current []models.Comment) ([]models.Comment, error)

// EntryStore is the journals collection.
type EntryStore interface {
	// ListEntries returns every entry ordered by createdAt descending.
	ListEntries(ctx context.Context) ([]models.Entry, error)
	GetEntry(ctx context.Context, id string) (*models.Entry, error)
	// CreateEntry stores a new entry and returns it with its store-assigned id.
	CreateEntry(ctx context.Context, entry models.Entry) (*models.Entry, error)
	UpdateEntry(ctx context.Context, id string, fields models.EntryFields) error
	DeleteEntry(ctx context.Context, id string) error

	// AddLike and RemoveLike are set operations on the likes field.
	AddLike(ctx context.Context, entryID, uid string) error
	RemoveLike(ctx context.Context, entryID, uid string) error

	// AppendComment adds one comment without touching the others.
	AppendComment(ctx context.Context, entryID string, comment models.Comment) error
	// RewriteComments replaces the whole comments field with the result of fn.
	RewriteComments(ctx context.Context, entryID string, fn CommentRewrite) ([]models.Comment, error)

	// WatchEntries calls fn with the ordered collection on every change until
	// ctx is cancelled or the listener fails.
	WatchEntries(ctx context.Context, fn func([]models.Entry)) error
}

// ProfileStore is the users collection.
type ProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	// EnsureProfile creates the profile on first sign-in, otherwise refreshes
	// the identity fields only.
	EnsureProfile(ctx context.Context, identity models.Identity) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, uid string, fields models.ProfileFields) error

	AddFollowing(ctx context.Context, uid, targetUID string) error
	RemoveFollowing(ctx context.Context, uid, targetUID string) error
	AddFollower(ctx context.Context, uid, followerUID string) error
	RemoveFollower(ctx context.Context, uid, followerUID string) error

	WatchProfile(ctx context.Context, uid string, fn func(*models.UserProfile)) error
}

// CalendarStore is the calendar_events collection.
type CalendarStore interface {
	// ListEvents returns user events ordered by date ascending.
	ListEvents(ctx context.Context) ([]models.CalendarEvent, error)
	GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error)
	CreateEvent(ctx context.Context, event models.CalendarEvent) (*models.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id string, fields models.CalendarEventFields) error
	DeleteEvent(ctx context.Context, id string) error
}
