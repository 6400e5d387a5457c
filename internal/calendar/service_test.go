package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"io.winapps.starlight/internal/apperr"
	"io.winapps.starlight/internal/logger"
	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/security"
	"io.winapps.starlight/internal/session"
	"io.winapps.starlight/internal/store/memstore"
)

func newTestService() (*Service, *memstore.Store) {
	st := memstore.New()
	s := NewService(st, security.NewSanitizer(), logger.Nop())
	s.now = func() time.Time { return time.UnixMilli(1000) }
	return s, st
}

func TestList_MergesBuiltinsFirst(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	v := &session.Viewer{UID: "u1"}

	if _, err := s.Create(ctx, v, models.CalendarEventFields{Date: "2025-08-12", Title: "Club trip"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, v, models.CalendarEventFields{Date: "2025-08-01", Title: "Star party"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.List(ctx, "2025-08")
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, ev := range got {
		titles = append(titles, ev.Title)
	}
	want := []string{"Star party", "Perseids meteor shower", "Club trip"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v", titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
	}
}

func TestList_AllAndInvalidMonth(t *testing.T) {
	s, _ := newTestService()
	all, err := s.List(context.Background(), "")
	if err != nil || len(all) != len(builtinEvents) {
		t.Fatalf("all: %d %v", len(all), err)
	}
	if _, err := s.List(context.Background(), "2025/08"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("invalid month: %v", err)
	}
}

func TestCreate_DefaultsAndValidation(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	ev, err := s.Create(ctx, &session.Viewer{UID: "u1"}, models.CalendarEventFields{Date: "2025-09-01", Title: "Jupiter"})
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type != models.EventTypeUser || ev.AuthorName != DefaultAuthorName || ev.UserID != "u1" || ev.CreatedAt != 1000 {
		t.Fatalf("event = %+v", ev)
	}

	bad := []models.CalendarEventFields{
		{Date: "2025-09-01"},
		{Title: "x"},
		{Date: "09/01/2025", Title: "x"},
		{Date: "2025-09-01", Title: "x", Type: "comet"},
	}
	for _, f := range bad {
		if _, err := s.Create(ctx, &session.Viewer{UID: "u1"}, f); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%+v: %v", f, err)
		}
	}
	if _, err := s.Create(ctx, nil, models.CalendarEventFields{Date: "2025-09-01", Title: "x"}); !errors.Is(err, apperr.ErrAuthRequired) {
		t.Errorf("anonymous: %v", err)
	}
}

func TestUpdateDelete_OwnerOnly(t *testing.T) {
	s, st := newTestService()
	ctx := context.Background()
	owner := &session.Viewer{UID: "u1"}
	other := &session.Viewer{UID: "u2"}

	ev, err := s.Create(ctx, owner, models.CalendarEventFields{Date: "2025-09-01", Title: "Jupiter"})
	if err != nil {
		t.Fatal(err)
	}

	edit := models.CalendarEventFields{Date: "2025-09-02", Title: "Jupiter moved", Type: models.EventTypePlanet}
	if _, err := s.Update(ctx, ev.ID, other, edit); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("update by other: %v", err)
	}
	if err := s.Delete(ctx, ev.ID, other); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("delete by other: %v", err)
	}

	updated, err := s.Update(ctx, ev.ID, owner, edit)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Date != "2025-09-02" || updated.UserID != "u1" {
		t.Fatalf("updated = %+v", updated)
	}

	if err := s.Delete(ctx, ev.ID, owner); err != nil {
		t.Fatal(err)
	}
	if _, err := st.GetEvent(ctx, ev.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("event still present: %v", err)
	}
	if err := s.Delete(ctx, "missing", owner); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
}

func TestEventsOnAndKeys(t *testing.T) {
	s, _ := newTestService()
	got, err := s.EventsOn(context.Background(), "2025-12-14")
	if err != nil || len(got) != 1 {
		t.Fatalf("got %v %v", got, err)
	}
	if k := EventKey(got[0]); k != "builtin:2025-12-14:Geminids meteor shower" {
		t.Errorf("key = %q", k)
	}
	if k := EventKey(models.CalendarEvent{ID: "event-1"}); k != "user:event-1" {
		t.Errorf("key = %q", k)
	}
}
