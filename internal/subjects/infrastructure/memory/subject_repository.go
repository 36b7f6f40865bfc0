package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	subjects "sakhi-cloud/internal/subjects/domain"
)

// SubjectRepository is an in-memory subject store with the same
// semantics as the Postgres repository, used in tests and when the
// service runs without a database.
type SubjectRepository struct {
	mu   sync.RWMutex
	data map[string]*subjects.Subject
}

// NewSubjectRepository constructs an empty repository.
func NewSubjectRepository() *SubjectRepository {
	return &SubjectRepository{data: make(map[string]*subjects.Subject)}
}

// Create inserts a subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *subjects.Subject) error {
	_ = ctx
	if r == nil {
		return errors.New("subject memory: nil repository")
	}
	if subject == nil {
		return errors.New("subject memory: nil subject")
	}
	if subject.ID == "" {
		return errors.New("subject memory: empty id")
	}
	subject.IntervalSeconds = subjects.ClampInterval(subject.IntervalSeconds)
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now().UTC()
	}
	if subject.UpdatedAt.IsZero() {
		subject.UpdatedAt = subject.CreatedAt
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[subject.ID]; exists {
		return errors.New("subject memory: duplicate id")
	}
	clone := cloneSubject(*subject)
	r.data[subject.ID] = &clone
	return nil
}

// Get loads a subject by id. Returns (nil, nil) when absent.
func (r *SubjectRepository) Get(ctx context.Context, id string) (*subjects.Subject, error) {
	_ = ctx
	if r == nil {
		return nil, errors.New("subject memory: nil repository")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	clone := cloneSubject(*stored)
	return &clone, nil
}

// ListArmed returns every armed subject, oldest confirmation first.
func (r *SubjectRepository) ListArmed(ctx context.Context) ([]subjects.Subject, error) {
	_ = ctx
	if r == nil {
		return nil, errors.New("subject memory: nil repository")
	}
	r.mu.RLock()
	var armed []subjects.Subject
	for _, stored := range r.data {
		if stored.Armed {
			armed = append(armed, cloneSubject(*stored))
		}
	}
	r.mu.RUnlock()
	sort.Slice(armed, func(i, j int) bool {
		return armed[i].LastConfirmationAt.Before(armed[j].LastConfirmationAt)
	})
	return armed, nil
}

// UpdateSettings replaces profile fields and the guardian list.
func (r *SubjectRepository) UpdateSettings(ctx context.Context, id, displayName, alertMessage string, intervalSeconds int, guardians []subjects.Guardian) error {
	_ = ctx
	if r == nil {
		return errors.New("subject memory: nil repository")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[id]
	if !ok {
		return errors.New("subject memory: not found")
	}
	stored.DisplayName = displayName
	stored.AlertMessage = alertMessage
	stored.IntervalSeconds = subjects.ClampInterval(intervalSeconds)
	stored.Guardians = append([]subjects.Guardian(nil), guardians...)
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

// Arm flips armed on and records confirmation time plus location.
func (r *SubjectRepository) Arm(ctx context.Context, id string, at time.Time, latitude, longitude *float64) error {
	_ = ctx
	if r == nil {
		return errors.New("subject memory: nil repository")
	}
	if at.IsZero() {
		return errors.New("subject memory: zero confirmation time")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[id]
	if !ok {
		return errors.New("subject memory: not found")
	}
	stored.Armed = true
	stored.LastConfirmationAt = at.UTC()
	stored.LastLatitude = copyFloat(latitude)
	stored.LastLongitude = copyFloat(longitude)
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

// CheckIn refreshes the confirmation time for an armed subject.
func (r *SubjectRepository) CheckIn(ctx context.Context, id string, at time.Time, latitude, longitude *float64) error {
	_ = ctx
	if r == nil {
		return errors.New("subject memory: nil repository")
	}
	if at.IsZero() {
		return errors.New("subject memory: zero confirmation time")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[id]
	if !ok || !stored.Armed {
		return nil
	}
	stored.LastConfirmationAt = at.UTC()
	if latitude != nil {
		stored.LastLatitude = copyFloat(latitude)
	}
	if longitude != nil {
		stored.LastLongitude = copyFloat(longitude)
	}
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

// Disarm flips armed off only when currently armed, reporting whether
// the state changed.
func (r *SubjectRepository) Disarm(ctx context.Context, id string) (bool, error) {
	_ = ctx
	if r == nil {
		return false, errors.New("subject memory: nil repository")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[id]
	if !ok || !stored.Armed {
		return false, nil
	}
	stored.Armed = false
	stored.UpdatedAt = time.Now().UTC()
	return true, nil
}

func cloneSubject(s subjects.Subject) subjects.Subject {
	s.Guardians = append([]subjects.Guardian(nil), s.Guardians...)
	s.LastLatitude = copyFloat(s.LastLatitude)
	s.LastLongitude = copyFloat(s.LastLongitude)
	return s
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}
