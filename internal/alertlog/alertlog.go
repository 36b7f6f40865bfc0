// Package alertlog persists the delivery record of every alert
// dispatch. A disarmed subject is never re-alerted, so this log is the
// only trace of which guardians were reached and which sends failed.
package alertlog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Event kinds.
const (
	KindDispatch = "dispatch"
	KindDisarm   = "disarm"
)

// Event is one row in the alert delivery log.
type Event struct {
	ID         string
	SubjectID  string
	Kind       string
	Guardian   string
	Channel    string
	Status     string
	Reason     string
	OccurredAt time.Time
}

// Recorder writes alert events.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// NewID generates a random event id.
func NewID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "alert-" + hex.EncodeToString(buf)
}
