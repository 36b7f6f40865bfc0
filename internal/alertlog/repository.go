package alertlog

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository is a Postgres-backed alert event log.
//
// Expected table:
//
//	alert_events (
//		id text primary key, subject_id text, kind text, guardian text,
//		channel text, status text, reason text, occurred_at timestamptz
//	)
type Repository struct {
	db *sql.DB
}

// NewRepository constructs an alert event repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// Record writes one alert event.
func (r *Repository) Record(ctx context.Context, event Event) error {
	if r == nil || r.db == nil {
		return errors.New("alertlog repo: nil db")
	}
	if event.SubjectID == "" {
		return errors.New("alertlog repo: empty subject id")
	}
	if event.ID == "" {
		event.ID = NewID()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO alert_events (
	id, subject_id, kind, guardian, channel, status, reason, occurred_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)`, event.ID, event.SubjectID, event.Kind, event.Guardian, event.Channel,
		event.Status, event.Reason, event.OccurredAt)
	return err
}

// ListBySubject returns events for one subject inside [from, to),
// newest first.
func (r *Repository) ListBySubject(ctx context.Context, subjectID string, from, to time.Time, limit int) ([]Event, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alertlog repo: nil db")
	}
	if subjectID == "" {
		return nil, errors.New("alertlog repo: empty subject id")
	}
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, subject_id, kind, guardian, channel, status, reason, occurred_at
FROM alert_events
WHERE subject_id = $1 AND occurred_at >= $2 AND occurred_at < $3
ORDER BY occurred_at DESC
LIMIT $4`, subjectID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(
			&event.ID,
			&event.SubjectID,
			&event.Kind,
			&event.Guardian,
			&event.Channel,
			&event.Status,
			&event.Reason,
			&event.OccurredAt,
		); err != nil {
			return nil, err
		}
		event.OccurredAt = event.OccurredAt.UTC()
		events = append(events, event)
	}
	return events, rows.Err()
}
