package history

import (
	"context"
	"database/sql"
	"time"
)

// Event is one journaled realtime event.
type Event struct {
	ID         string
	Name       string
	Payload    string
	ReceivedAt time.Time
}

// EventRepo handles the events table.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Insert(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO events(id, name, payload, received_at) VALUES(?, ?, ?, ?);
	`, e.ID, e.Name, e.Payload, e.ReceivedAt)
	return err
}

// ListRecent returns the newest events first.
func (r *EventRepo) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, payload, received_at FROM events
	ORDER BY received_at DESC, id DESC LIMIT ?;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Payload, &e.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune deletes everything but the newest keep rows.
func (r *EventRepo) Prune(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx, `
	DELETE FROM events WHERE id NOT IN (
	  SELECT id FROM events ORDER BY received_at DESC, id DESC LIMIT ?
	);
	`, keep)
	return err
}
