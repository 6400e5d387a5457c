// Package notify sends best-effort push notifications through FCM and runs
// the daily calendar reminder job.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PushToken is one user's FCM registration
type PushToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FCMToken  string    `json:"fcmToken"`
	Platform  string    `json:"platform"`
	Timezone  string    `json:"timezone"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Registry stores push tokens and reminder deliveries
type Registry interface {
	Register(ctx context.Context, token PushToken) (string, error)
	Token(ctx context.Context, uid string) (*PushToken, error)
	ActiveTokens(ctx context.Context) ([]PushToken, error)
	Deactivate(ctx context.Context, uid string) error
	// MarkDelivered records a reminder delivery and reports false if one
	// was already recorded for the same user, event and date.
	MarkDelivered(ctx context.Context, uid, eventKey, date string) (bool, error)
	// UnmarkDelivered releases a recorded delivery whose send failed
	UnmarkDelivered(ctx context.Context, uid, eventKey, date string) error
}

// querier is the subset of *pgxpool.Pool the registry uses
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ querier = (*pgxpool.Pool)(nil)

// PGRegistry keeps tokens in the push_tokens table
type PGRegistry struct {
	db querier
}

func NewPGRegistry(pool *pgxpool.Pool) *PGRegistry {
	return &PGRegistry{db: pool}
}

func (r *PGRegistry) Register(ctx context.Context, token PushToken) (string, error) {
	query := `
		INSERT INTO push_tokens (user_id, fcm_token, platform, timezone, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (user_id)
		DO UPDATE SET
			fcm_token = EXCLUDED.fcm_token,
			platform = EXCLUDED.platform,
			timezone = EXCLUDED.timezone,
			active = TRUE,
			updated_at = NOW()
		RETURNING id`

	var id string
	err := r.db.QueryRow(ctx, query, token.UserID, token.FCMToken, token.Platform, token.Timezone).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("save push token: %w", err)
	}
	return id, nil
}

// Token returns the active token of uid, or nil when there is none
func (r *PGRegistry) Token(ctx context.Context, uid string) (*PushToken, error) {
	query := `
		SELECT id, user_id, fcm_token, platform, timezone, active, updated_at
		FROM push_tokens WHERE user_id = $1 AND active = TRUE`

	var t PushToken
	err := r.db.QueryRow(ctx, query, uid).Scan(&t.ID, &t.UserID, &t.FCMToken, &t.Platform, &t.Timezone, &t.Active, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load push token: %w", err)
	}
	return &t, nil
}

func (r *PGRegistry) ActiveTokens(ctx context.Context) ([]PushToken, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, fcm_token, platform, timezone, active, updated_at
		FROM push_tokens WHERE active = TRUE ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list push tokens: %w", err)
	}
	defer rows.Close()

	var out []PushToken
	for rows.Next() {
		var t PushToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.FCMToken, &t.Platform, &t.Timezone, &t.Active, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan push token: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Deactivate stops sending to uid, used when FCM reports the token unregistered
func (r *PGRegistry) Deactivate(ctx context.Context, uid string) error {
	_, err := r.db.Exec(ctx, `UPDATE push_tokens SET active = FALSE, updated_at = NOW() WHERE user_id = $1`, uid)
	if err != nil {
		return fmt.Errorf("deactivate push token: %w", err)
	}
	return nil
}

func (r *PGRegistry) MarkDelivered(ctx context.Context, uid, eventKey, date string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO reminder_deliveries (user_id, event_key, event_date)
		VALUES ($1, $2, $3::date)
		ON CONFLICT DO NOTHING`, uid, eventKey, date)
	if err != nil {
		return false, fmt.Errorf("record reminder delivery: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGRegistry) UnmarkDelivered(ctx context.Context, uid, eventKey, date string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM reminder_deliveries
		WHERE user_id = $1 AND event_key = $2 AND event_date = $3::date`, uid, eventKey, date)
	if err != nil {
		return fmt.Errorf("release reminder delivery: %w", err)
	}
	return nil
}
