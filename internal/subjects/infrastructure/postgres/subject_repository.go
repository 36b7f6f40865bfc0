package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	subjects "sakhi-cloud/internal/subjects/domain"
)

// SubjectRepository is a Postgres repository for subjects. Guardians
// are stored as a JSON array owned by the subject row.
//
// Expected table:
//
//	subjects (
//		id text primary key, email text, display_name text, alert_message text,
//		armed boolean not null default false, last_confirmation_at timestamptz,
//		interval_seconds integer not null, last_latitude double precision,
//		last_longitude double precision, guardians jsonb not null default '[]',
//		created_at timestamptz not null, updated_at timestamptz not null
//	)
type SubjectRepository struct {
	db *sql.DB
}

// NewSubjectRepository constructs a repository.
func NewSubjectRepository(db *sql.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = `id, email, display_name, alert_message, armed, last_confirmation_at,
	interval_seconds, last_latitude, last_longitude, guardians, created_at, updated_at`

// Create inserts a new, disarmed subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *subjects.Subject) error {
	if r == nil || r.db == nil {
		return errors.New("subject repo: nil db")
	}
	if subject == nil {
		return errors.New("subject repo: nil subject")
	}
	if subject.ID == "" {
		return errors.New("subject repo: empty id")
	}
	subject.IntervalSeconds = subjects.ClampInterval(subject.IntervalSeconds)
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now().UTC()
	}
	if subject.UpdatedAt.IsZero() {
		subject.UpdatedAt = subject.CreatedAt
	}
	guardians, err := marshalGuardians(subject.Guardians)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO subjects (
	id, email, display_name, alert_message, armed, last_confirmation_at,
	interval_seconds, last_latitude, last_longitude, guardians, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6,
	$7, $8, $9, $10, $11, $12
)`, subject.ID, subject.Email, subject.DisplayName, subject.AlertMessage, subject.Armed,
		nullTime(subject.LastConfirmationAt), subject.IntervalSeconds,
		subject.LastLatitude, subject.LastLongitude, guardians,
		subject.CreatedAt, subject.UpdatedAt)
	return err
}

// Get loads a subject by id. Returns (nil, nil) when absent.
func (r *SubjectRepository) Get(ctx context.Context, id string) (*subjects.Subject, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("subject repo: nil db")
	}
	if id == "" {
		return nil, errors.New("subject repo: empty id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+subjectColumns+`
FROM subjects
WHERE id = $1
LIMIT 1`, id)
	subject, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return subject, nil
}

// ListArmed returns every armed subject with all fields, the sweep's
// read surface.
func (r *SubjectRepository) ListArmed(ctx context.Context) ([]subjects.Subject, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("subject repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+subjectColumns+`
FROM subjects
WHERE armed = TRUE
ORDER BY last_confirmation_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []subjects.Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *subject)
	}
	return result, rows.Err()
}

// UpdateSettings replaces the subject's profile fields and guardian
// list. The interval is clamped at the point of being set.
func (r *SubjectRepository) UpdateSettings(ctx context.Context, id, displayName, alertMessage string, intervalSeconds int, guardians []subjects.Guardian) error {
	if r == nil || r.db == nil {
		return errors.New("subject repo: nil db")
	}
	if id == "" {
		return errors.New("subject repo: empty id")
	}
	encoded, err := marshalGuardians(guardians)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE subjects
SET display_name = $2, alert_message = $3, interval_seconds = $4, guardians = $5, updated_at = $6
WHERE id = $1`, id, displayName, alertMessage, subjects.ClampInterval(intervalSeconds), encoded, time.Now().UTC())
	return err
}

// Arm starts the countdown: records the confirmation time and location
// and flips armed on.
func (r *SubjectRepository) Arm(ctx context.Context, id string, at time.Time, latitude, longitude *float64) error {
	if r == nil || r.db == nil {
		return errors.New("subject repo: nil db")
	}
	if id == "" {
		return errors.New("subject repo: empty id")
	}
	if at.IsZero() {
		return errors.New("subject repo: zero confirmation time")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE subjects
SET armed = TRUE, last_confirmation_at = $2, last_latitude = $3, last_longitude = $4, updated_at = $5
WHERE id = $1`, id, at.UTC(), latitude, longitude, time.Now().UTC())
	return err
}

// CheckIn refreshes the confirmation time (and location when given)
// for an armed subject.
func (r *SubjectRepository) CheckIn(ctx context.Context, id string, at time.Time, latitude, longitude *float64) error {
	if r == nil || r.db == nil {
		return errors.New("subject repo: nil db")
	}
	if id == "" {
		return errors.New("subject repo: empty id")
	}
	if at.IsZero() {
		return errors.New("subject repo: zero confirmation time")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE subjects
SET last_confirmation_at = $2,
	last_latitude = COALESCE($3, last_latitude),
	last_longitude = COALESCE($4, last_longitude),
	updated_at = $5
WHERE id = $1 AND armed = TRUE`, id, at.UTC(), latitude, longitude, time.Now().UTC())
	return err
}

// Disarm flips armed off only when it is currently on and reports
// whether the row flipped. Conditioning on armed keeps concurrent
// sweep passes from double-counting the same overdue detection.
func (r *SubjectRepository) Disarm(ctx context.Context, id string) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("subject repo: nil db")
	}
	if id == "" {
		return false, errors.New("subject repo: empty id")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE subjects
SET armed = FALSE, updated_at = $2
WHERE id = $1 AND armed = TRUE`, id, time.Now().UTC())
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (*subjects.Subject, error) {
	var subject subjects.Subject
	var lastConfirmation sql.NullTime
	var guardians []byte
	if err := row.Scan(
		&subject.ID,
		&subject.Email,
		&subject.DisplayName,
		&subject.AlertMessage,
		&subject.Armed,
		&lastConfirmation,
		&subject.IntervalSeconds,
		&subject.LastLatitude,
		&subject.LastLongitude,
		&guardians,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastConfirmation.Valid {
		subject.LastConfirmationAt = lastConfirmation.Time.UTC()
	}
	subject.CreatedAt = subject.CreatedAt.UTC()
	subject.UpdatedAt = subject.UpdatedAt.UTC()
	// A malformed guardian column degrades to "no reachable guardians"
	// rather than failing the read.
	if len(guardians) > 0 {
		var parsed []subjects.Guardian
		if err := json.Unmarshal(guardians, &parsed); err == nil {
			subject.Guardians = parsed
		}
	}
	return &subject, nil
}

func marshalGuardians(guardians []subjects.Guardian) ([]byte, error) {
	if guardians == nil {
		guardians = []subjects.Guardian{}
	}
	return json.Marshal(guardians)
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
