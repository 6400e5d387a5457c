package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
)

func (f *Firestore) calendar() *firestore.CollectionRef {
	return f.client.Collection(CalendarCollection)
}

func eventFromDoc(doc *firestore.DocumentSnapshot) (models.CalendarEvent, error) {
	var ev models.CalendarEvent
	if err := doc.DataTo(&ev); err != nil {
		return ev, fmt.Errorf("decode calendar event %s: %w", doc.Ref.ID, err)
	}
	ev.ID = doc.Ref.ID
	return ev, nil
}

// ListEvents returns user events ordered by date
func (f *Firestore) ListEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	docs, err := f.calendar().OrderBy("date", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, classify(err, "Failed to list calendar events")
	}
	events := make([]models.CalendarEvent, 0, len(docs))
	for _, doc := range docs {
		ev, err := eventFromDoc(doc)
		if err != nil {
			return nil, classify(err, "Failed to read calendar event")
		}
		events = append(events, ev)
	}
	return events, nil
}

// GetEvent reads one user event
func (f *Firestore) GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error) {
	if id == "" {
		return nil, apperr.Validation("Event ID is required")
	}
	doc, err := f.calendar().Doc(id).Get(ctx)
	if err != nil {
		return nil, classify(err, "Calendar event not found")
	}
	ev, err := eventFromDoc(doc)
	if err != nil {
		return nil, classify(err, "Failed to read calendar event")
	}
	return &ev, nil
}

// CreateEvent adds a user event
func (f *Firestore) CreateEvent(ctx context.Context, event models.CalendarEvent) (*models.CalendarEvent, error) {
	ref, _, err := f.calendar().Add(ctx, event)
	if err != nil {
		return nil, classify(err, "Failed to create calendar event")
	}
	event.ID = ref.ID
	return &event, nil
}

// UpdateEvent writes the editable fields; userId and createdAt stay untouched
func (f *Firestore) UpdateEvent(ctx context.Context, id string, fields models.CalendarEventFields) error {
	_, err := f.calendar().Doc(id).Update(ctx, []firestore.Update{
		{Path: "date", Value: fields.Date},
		{Path: "title", Value: fields.Title},
		{Path: "description", Value: fields.Description},
		{Path: "time", Value: fields.Time},
		{Path: "type", Value: fields.Type},
	})
	return classify(err, "Failed to update calendar event")
}

// DeleteEvent removes a user event
func (f *Firestore) DeleteEvent(ctx context.Context, id string) error {
	_, err := f.calendar().Doc(id).Delete(ctx)
	return classify(err, "Failed to delete calendar event")
}
