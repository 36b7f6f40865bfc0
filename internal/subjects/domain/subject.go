package subjects

import (
	"errors"
	"time"
)

const (
	// MinIntervalSeconds is the shortest allowed check-in cadence.
	MinIntervalSeconds = 10
	// MaxIntervalSeconds is the longest allowed check-in cadence.
	MaxIntervalSeconds = 3600

	// Grace absorbs scheduler and network jitter between the expected
	// and actual sweep invocation times.
	Grace = 15 * time.Second
)

// Subject is one monitored person's switch state.
type Subject struct {
	ID                 string
	Email              string
	DisplayName        string
	AlertMessage       string
	Armed              bool
	LastConfirmationAt time.Time
	IntervalSeconds    int
	LastLatitude       *float64
	LastLongitude      *float64
	Guardians          []Guardian
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ClampInterval forces a cadence into [MinIntervalSeconds, MaxIntervalSeconds].
func ClampInterval(seconds int) int {
	if seconds < MinIntervalSeconds {
		return MinIntervalSeconds
	}
	if seconds > MaxIntervalSeconds {
		return MaxIntervalSeconds
	}
	return seconds
}

// Validate checks subject invariants.
func (s Subject) Validate() error {
	if s.ID == "" {
		return errors.New("subject: empty id")
	}
	if s.IntervalSeconds < MinIntervalSeconds || s.IntervalSeconds > MaxIntervalSeconds {
		return errors.New("subject: interval out of range")
	}
	if s.Armed && s.LastConfirmationAt.IsZero() {
		return errors.New("subject: armed without confirmation time")
	}
	return nil
}

// Deadline is the moment the next confirmation is due.
func (s Subject) Deadline() time.Time {
	return s.LastConfirmationAt.Add(time.Duration(s.IntervalSeconds) * time.Second)
}

// Overdue reports whether the subject missed its deadline plus grace.
// A zero LastConfirmationAt never counts as overdue: a malformed or
// missing confirmation timestamp must not trigger an alert.
func (s Subject) Overdue(now time.Time) bool {
	if !s.Armed {
		return false
	}
	if s.LastConfirmationAt.IsZero() {
		return false
	}
	return now.After(s.Deadline().Add(Grace))
}

// HasLocation reports whether both coordinates are known.
func (s Subject) HasLocation() bool {
	return s.LastLatitude != nil && s.LastLongitude != nil
}

// PrimaryGuardian returns the first guardian, the default contact for
// manual SOS.
func (s Subject) PrimaryGuardian() (Guardian, bool) {
	if len(s.Guardians) == 0 {
		return Guardian{}, false
	}
	return s.Guardians[0], true
}
