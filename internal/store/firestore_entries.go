package store

import (
	"context"

	"cloud.google.com/go/firestore"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
)

func (f *Firestore) journals() *firestore.CollectionRef {
	return f.client.Collection(JournalsCollection)
}

func (f *Firestore) entriesQuery() firestore.Query {
	return f.journals().OrderBy("createdAt", firestore.Desc)
}

// ListEntries returns all entries, newest first
func (f *Firestore) ListEntries(ctx context.Context) ([]models.Entry, error) {
	docs, err := f.entriesQuery().Documents(ctx).GetAll()
	if err != nil {
		return nil, classify(err, "Failed to list entries")
	}
	return entriesFromDocs(docs)
}

// GetEntry reads one entry by id
func (f *Firestore) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	if id == "" {
		return nil, apperr.Validation("Entry ID is required")
	}
	doc, err := f.journals().Doc(id).Get(ctx)
	if err != nil {
		return nil, classify(err, "Entry not found")
	}
	e, err := entryFromDoc(doc)
	if err != nil {
		return nil, classify(err, "Failed to read entry")
	}
	return &e, nil
}

// CreateEntry adds the entry and lets the store assign its id
func (f *Firestore) CreateEntry(ctx context.Context, entry models.Entry) (*models.Entry, error) {
	normalizeEntry(&entry)
	ref, _, err := f.journals().Add(ctx, entry)
	if err != nil {
		return nil, classify(err, "Failed to create entry")
	}
	entry.ID = ref.ID
	return &entry, nil
}

// UpdateEntry writes the owner-editable fields. userId, createdAt, likes and
// comments are never part of this write.
func (f *Firestore) UpdateEntry(ctx context.Context, id string, fields models.EntryFields) error {
	var coords interface{} = firestore.Delete
	if fields.Coordinates != nil {
		coords = fields.Coordinates
	}
	updates := []firestore.Update{
		{Path: "title", Value: fields.Title},
		{Path: "date", Value: fields.Date},
		{Path: "location", Value: fields.Location},
		{Path: "equipment", Value: fields.Equipment},
		{Path: "target", Value: fields.Target},
		{Path: "description", Value: fields.Description},
		{Path: "observers", Value: fields.Observers},
		{Path: "authorName", Value: fields.AuthorName},
		{Path: "imageUrl", Value: fields.ImageURL},
		{Path: "coordinates", Value: coords},
	}
	if _, err := f.journals().Doc(id).Update(ctx, updates); err != nil {
		return classify(err, "Failed to update entry")
	}
	return nil
}

// DeleteEntry removes the entry document
func (f *Firestore) DeleteEntry(ctx context.Context, id string) error {
	if _, err := f.journals().Doc(id).Delete(ctx); err != nil {
		return classify(err, "Failed to delete entry")
	}
	return nil
}

// AddLike adds uid to likes if absent
func (f *Firestore) AddLike(ctx context.Context, entryID, uid string) error {
	_, err := f.journals().Doc(entryID).Update(ctx, []firestore.Update{
		{Path: "likes", Value: firestore.ArrayUnion(uid)},
	})
	return classify(err, "Failed to like entry")
}

// RemoveLike removes uid from likes if present
func (f *Firestore) RemoveLike(ctx context.Context, entryID, uid string) error {
	_, err := f.journals().Doc(entryID).Update(ctx, []firestore.Update{
		{Path: "likes", Value: firestore.ArrayRemove(uid)},
	})
	return classify(err, "Failed to unlike entry")
}

// AppendComment unions the comment into the comments array, so concurrent
// appends from different clients never overwrite each other.
func (f *Firestore) AppendComment(ctx context.Context, entryID string, comment models.Comment) error {
	_, err := f.journals().Doc(entryID).Update(ctx, []firestore.Update{
		{Path: "comments", Value: firestore.ArrayUnion(comment)},
	})
	return classify(err, "Failed to add comment")
}

// RewriteComments replaces the comments field as a whole. Array items cannot
// be patched individually, so the read and the write run in one transaction:
// a concurrent edit makes Firestore retry fn against the fresh sequence
// instead of silently losing one of the writes.
func (f *Firestore) RewriteComments(ctx context.Context, entryID string, fn CommentRewrite) ([]models.Comment, error) {
	ref := f.journals().Doc(entryID)
	var result []models.Comment
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, err := entryFromDoc(doc)
		if err != nil {
			return err
		}
		next, err := fn(current.Comments)
		if err != nil {
			return err
		}
		if next == nil {
			next = []models.Comment{}
		}
		result = next
		return tx.Update(ref, []firestore.Update{{Path: "comments", Value: next}})
	})
	if err != nil {
		return nil, classify(err, "Failed to update comments")
	}
	return result, nil
}

// WatchEntries streams the ordered collection until ctx ends
func (f *Firestore) WatchEntries(ctx context.Context, fn func([]models.Entry)) error {
	it := f.entriesQuery().Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if isStopped(err) || ctx.Err() != nil {
				return ctx.Err()
			}
			return classify(err, "Entry listener failed")
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			return classify(err, "Failed to read entry snapshot")
		}
		entries, err := entriesFromDocs(docs)
		if err != nil {
			return err
		}
		fn(entries)
	}
}
