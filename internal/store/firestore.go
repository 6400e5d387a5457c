package store

import (
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
)

// Firestore implements EntryStore, ProfileStore and CalendarStore on Cloud Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore wraps a Firestore client obtained from the Firebase app
func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

var (
	_ EntryStore    = (*Firestore)(nil)
	_ ProfileStore  = (*Firestore)(nil)
	_ CalendarStore = (*Firestore)(nil)
)

// classify turns a Firestore/gRPC error into an apperr kind
func classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return apperr.Wrap(apperr.KindNotFound, msg, err)
	case codes.PermissionDenied:
		return apperr.Wrap(apperr.KindPermissionDenied, msg, err)
	case codes.Unauthenticated:
		return apperr.Wrap(apperr.KindAuthRequired, msg, err)
	case codes.InvalidArgument:
		return apperr.Wrap(apperr.KindValidation, msg, err)
	default:
		return apperr.Wrap(apperr.KindStoreFailure, msg, err)
	}
}

func isStopped(err error) bool {
	if errors.Is(err, iterator.Done) {
		return true
	}
	code := status.Code(err)
	return code == codes.Canceled || code == codes.DeadlineExceeded
}

func entryFromDoc(doc *firestore.DocumentSnapshot) (models.Entry, error) {
	var e models.Entry
	if err := doc.DataTo(&e); err != nil {
		return e, fmt.Errorf("decode entry %s: %w", doc.Ref.ID, err)
	}
	e.ID = doc.Ref.ID
	normalizeEntry(&e)
	return e, nil
}

func entriesFromDocs(docs []*firestore.DocumentSnapshot) ([]models.Entry, error) {
	entries := make([]models.Entry, 0, len(docs))
	for _, doc := range docs {
		e, err := entryFromDoc(doc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// normalizeEntry replaces missing array fields so responses always carry [] rather than null
func normalizeEntry(e *models.Entry) {
	if e.Likes == nil {
		e.Likes = []string{}
	}
	if e.Comments == nil {
		e.Comments = []models.Comment{}
	}
}

func normalizeProfile(p *models.UserProfile) {
	if p.Followers == nil {
		p.Followers = []string{}
	}
	if p.Following == nil {
		p.Following = []string{}
	}
}
