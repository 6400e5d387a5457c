// Package calendar merges the built-in astronomical events with events users
// add to the calendar_events collection.
package calendar

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/security"
	"io.winapps.starlight/internal/session"
	"io.winapps.starlight/internal/store"
)

// DefaultAuthorName is used when the event author has no display name
const DefaultAuthorName = "익명의 천문학자"

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

type Service struct {
	events    store.CalendarStore
	sanitizer *security.Sanitizer
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewService(events store.CalendarStore, sanitizer *security.Sanitizer, logger *zap.SugaredLogger) *Service {
	return &Service{events: events, sanitizer: sanitizer, logger: logger, now: time.Now}
}

// List returns built-in and user events ordered by date, built-ins first on
// the same day. An empty month returns every event; otherwise month is YYYY-MM.
func (s *Service) List(ctx context.Context, month string) ([]models.CalendarEvent, error) {
	month = strings.TrimSpace(month)
	if month != "" {
		if _, err := time.Parse(monthLayout, month); err != nil {
			return nil, apperr.Validation("month must be YYYY-MM")
		}
	}
	return s.filtered(ctx, func(date string) bool {
		return month == "" || strings.HasPrefix(date, month+"-")
	})
}

// EventsOn returns the events dated date (YYYY-MM-DD)
func (s *Service) EventsOn(ctx context.Context, date string) ([]models.CalendarEvent, error) {
	return s.filtered(ctx, func(d string) bool { return d == date })
}

func (s *Service) filtered(ctx context.Context, keep func(date string) bool) ([]models.CalendarEvent, error) {
	user, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.CalendarEvent, 0, len(builtinEvents)+len(user))
	for _, ev := range builtinEvents {
		if keep(ev.Date) {
			out = append(out, ev)
		}
	}
	for _, ev := range user {
		if keep(ev.Date) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Service) validate(fields models.CalendarEventFields) (models.CalendarEventFields, error) {
	fields.Title = s.sanitizer.Text(fields.Title)
	fields.Description = s.sanitizer.Text(fields.Description)
	fields.Time = s.sanitizer.Text(fields.Time)
	fields.Date = strings.TrimSpace(fields.Date)
	fields.Type = strings.TrimSpace(fields.Type)

	if fields.Title == "" || fields.Date == "" {
		return fields, apperr.Validation("Title and date are required")
	}
	if _, err := time.Parse(dateLayout, fields.Date); err != nil {
		return fields, apperr.Validation("date must be YYYY-MM-DD")
	}
	if fields.Type == "" {
		fields.Type = models.EventTypeUser
	}
	if !models.ValidEventType(fields.Type) {
		return fields, apperr.Validation("Unknown event type")
	}
	return fields, nil
}

// Create adds a user event owned by the viewer
func (s *Service) Create(ctx context.Context, viewer *session.Viewer, fields models.CalendarEventFields) (*models.CalendarEvent, error) {
	if viewer == nil {
		return nil, apperr.AuthRequired("Sign in to add events")
	}
	fields, err := s.validate(fields)
	if err != nil {
		return nil, err
	}
	return s.events.CreateEvent(ctx, models.CalendarEvent{
		Date:        fields.Date,
		Title:       fields.Title,
		Description: fields.Description,
		Time:        fields.Time,
		Type:        fields.Type,
		UserID:      viewer.UID,
		AuthorName:  viewer.Name(DefaultAuthorName),
		CreatedAt:   s.now().UnixMilli(),
	})
}

func (s *Service) owned(ctx context.Context, id string, viewer *session.Viewer) (*models.CalendarEvent, error) {
	if viewer == nil {
		return nil, apperr.AuthRequired("User not authenticated")
	}
	if id == "" {
		return nil, apperr.Validation("Event ID is required")
	}
	ev, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.UserID != viewer.UID {
		return nil, apperr.PermissionDenied("Only the author can change this event")
	}
	return ev, nil
}

// Update rewrites the editable fields of the viewer's own event
func (s *Service) Update(ctx context.Context, id string, viewer *session.Viewer, fields models.CalendarEventFields) (*models.CalendarEvent, error) {
	ev, err := s.owned(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	fields, err = s.validate(fields)
	if err != nil {
		return nil, err
	}
	if err := s.events.UpdateEvent(ctx, id, fields); err != nil {
		return nil, err
	}
	ev.Date, ev.Title, ev.Description, ev.Time, ev.Type = fields.Date, fields.Title, fields.Description, fields.Time, fields.Type
	return ev, nil
}

// Delete removes the viewer's own event
func (s *Service) Delete(ctx context.Context, id string, viewer *session.Viewer) error {
	if _, err := s.owned(ctx, id, viewer); err != nil {
		return err
	}
	return s.events.DeleteEvent(ctx, id)
}

// EventKey identifies an event across built-ins and user events
func EventKey(ev models.CalendarEvent) string {
	if ev.ID != "" {
		return "user:" + ev.ID
	}
	return "builtin:" + ev.Date + ":" + ev.Title
}
