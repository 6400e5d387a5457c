package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	models "io.winapps.starlight/internal/models/account"
)

// EventSource lists the calendar events of one day
type EventSource interface {
	EventsOn(ctx context.Context, date string) ([]models.CalendarEvent, error)
}

// Reminders sends each registered user one push per calendar event on the
// event's day. Deliveries are recorded so reruns on the same day are no-ops.
type Reminders struct {
	events     EventSource
	registry   Registry
	dispatcher *Dispatcher
	keyFn      func(models.CalendarEvent) string
	logger     *zap.SugaredLogger
	cron       *cron.Cron
	now        func() time.Time
}

func NewReminders(events EventSource, registry Registry, dispatcher *Dispatcher, keyFn func(models.CalendarEvent) string, logger *zap.SugaredLogger) *Reminders {
	return &Reminders{
		events:     events,
		registry:   registry,
		dispatcher: dispatcher,
		keyFn:      keyFn,
		logger:     logger,
		cron:       cron.New(cron.WithLocation(time.UTC)),
		now:        time.Now,
	}
}

// Start schedules the job on schedule (standard five-field cron, UTC)
func (r *Reminders) Start(ctx context.Context, schedule string) error {
	_, err := r.cron.AddFunc(schedule, func() {
		sent, err := r.RunOnce(ctx, r.now())
		if err != nil {
			r.logger.Errorw("reminder run failed", "error", err)
			return
		}
		r.logger.Infow("reminder run finished", "sent", sent)
	})
	if err != nil {
		return fmt.Errorf("schedule reminders %q: %w", schedule, err)
	}
	r.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job
func (r *Reminders) Stop() {
	<-r.cron.Stop().Done()
}

// RunOnce sends the reminders for day and returns how many were delivered
func (r *Reminders) RunOnce(ctx context.Context, day time.Time) (int, error) {
	date := day.UTC().Format("2006-01-02")
	events, err := r.events.EventsOn(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("list events for %s: %w", date, err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	tokens, err := r.registry.ActiveTokens(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, tok := range tokens {
		for _, ev := range events {
			if ctx.Err() != nil {
				return sent, ctx.Err()
			}
			key := r.keyFn(ev)
			first, err := r.registry.MarkDelivered(ctx, tok.UserID, key, date)
			if err != nil {
				r.logger.Warnw("failed to record reminder", "user_uid", tok.UserID, "event", key, "error", err)
				continue
			}
			if !first {
				continue
			}
			body := ev.Description
			if ev.Time != "" {
				body = ev.Time + " · " + body
			}
			// the claim above keeps concurrent runs from double-sending; a failed
			// send gives it back so the next run retries
			if !r.dispatcher.SendTo(ctx, tok, ev.Title, body, map[string]string{"type": "reminder", "date": date, "event": key}) {
				if err := r.registry.UnmarkDelivered(ctx, tok.UserID, key, date); err != nil {
					r.logger.Warnw("failed to release reminder", "user_uid", tok.UserID, "event", key, "error", err)
				}
				continue
			}
			sent++
		}
	}
	return sent, nil
}
