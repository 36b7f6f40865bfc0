package alertlog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory alert event log for tests and for
// running the service without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record implements Recorder.
func (s *MemoryStore) Record(ctx context.Context, event Event) error {
	_ = ctx
	if s == nil {
		return errors.New("alertlog memory: nil store")
	}
	if event.SubjectID == "" {
		return errors.New("alertlog memory: empty subject id")
	}
	if event.ID == "" {
		event.ID = NewID()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return nil
}

// ListBySubject returns events for one subject inside [from, to),
// newest first.
func (s *MemoryStore) ListBySubject(ctx context.Context, subjectID string, from, to time.Time, limit int) ([]Event, error) {
	_ = ctx
	if s == nil {
		return nil, errors.New("alertlog memory: nil store")
	}
	if limit <= 0 {
		limit = 200
	}
	s.mu.RLock()
	var events []Event
	for _, event := range s.events {
		if event.SubjectID != subjectID {
			continue
		}
		if event.OccurredAt.Before(from) || !event.OccurredAt.Before(to) {
			continue
		}
		events = append(events, event)
	}
	s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
