package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sawpanic/riskdesk/internal/models"
)

// PostgresLog persists events to the `events` table (id, event_type,
// source, payload, ts), which a migration must already have created;
// this type never creates tables.
type PostgresLog struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresLog wraps an already-connected sqlx.DB.
func NewPostgresLog(db *sqlx.DB, timeout time.Duration) *PostgresLog {
	return &PostgresLog{db: db, timeout: timeout}
}

type eventRow struct {
	ID        string    `db:"id"`
	EventType string    `db:"event_type"`
	Source    string    `db:"source"`
	Payload   []byte    `db:"payload"`
	Ts        time.Time `db:"ts"`
}

// Append inserts evt. A duplicate id (re-emitted by a retried producer) is
// treated as success, not an error, since events are meant to be
// idempotently appendable.
func (l *PostgresLog) Append(ctx context.Context, evt models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("eventbus: marshal payload: %w", err)
	}

	const query = `
		INSERT INTO events (id, event_type, source, payload, ts)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = l.db.ExecContext(ctx, query, evt.ID, evt.EventType, evt.Source, payload, evt.Ts)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil
		}
		return fmt.Errorf("eventbus: insert event: %w", err)
	}
	return nil
}

// Recent returns the most recent events, newest first.
func (l *PostgresLog) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	const query = `
		SELECT id, event_type, source, payload, ts
		FROM events
		ORDER BY ts DESC
		LIMIT $1`

	var rows []eventRow
	if err := l.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("eventbus: select recent events: %w", err)
	}

	events := make([]models.Event, 0, len(rows))
	for _, r := range rows {
		var payload map[string]interface{}
		if len(r.Payload) > 0 {
			if err := json.Unmarshal(r.Payload, &payload); err != nil {
				return nil, fmt.Errorf("eventbus: unmarshal payload for event %s: %w", r.ID, err)
			}
		}
		events = append(events, models.Event{
			ID:        r.ID,
			EventType: r.EventType,
			Source:    r.Source,
			Payload:   payload,
			Ts:        r.Ts,
		})
	}
	return events, nil
}
