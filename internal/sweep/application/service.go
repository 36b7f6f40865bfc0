// Package application runs the deadline sweep: one pass over every
// armed subject, alert fanout for the overdue ones, and the terminal
// disarm write that keeps each overdue period from alerting twice.
package application

import (
	"context"
	"errors"
	"log"
	"time"

	"sakhi-cloud/internal/alerting"
	"sakhi-cloud/internal/alerting/notify"
	"sakhi-cloud/internal/alertlog"
	sweepmetrics "sakhi-cloud/internal/sweep/metrics"
	subjects "sakhi-cloud/internal/subjects/domain"
)

// Store is the subject surface the sweep consumes.
type Store interface {
	ListArmed(ctx context.Context) ([]subjects.Subject, error)
	// Disarm flips armed off only when currently on and reports
	// whether the row flipped.
	Disarm(ctx context.Context, id string) (bool, error)
}

// Dispatcher fans a payload out to guardians.
type Dispatcher interface {
	Fanout(ctx context.Context, guardians []subjects.Guardian, payload alerting.Payload) []notify.Outcome
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Result is what the triggering scheduler sees: overall success and
// the number of subjects alerted this pass. Individual dispatch
// failures are deliberately invisible here.
type Result struct {
	OK        bool `json:"ok"`
	Triggered int  `json:"triggered"`
}

// Service is the sweep orchestrator.
type Service struct {
	store      Store
	dispatcher Dispatcher
	recorder   alertlog.Recorder
	metrics    *sweepmetrics.Metrics
	clock      Clock
	logger     *log.Logger
}

// ServiceOption customizes the sweep service.
type ServiceOption func(*Service)

// WithClock overrides the default clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithRecorder assigns an alert event recorder.
func WithRecorder(recorder alertlog.Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithMetrics assigns sweep metrics.
func WithMetrics(m *sweepmetrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService constructs a sweep service.
func NewService(store Store, dispatcher Dispatcher, logger *log.Logger, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("sweep: nil store")
	}
	if dispatcher == nil {
		return nil, errors.New("sweep: nil dispatcher")
	}
	service := &Service{
		store:      store,
		dispatcher: dispatcher,
		clock:      systemClock{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Run executes one sweep pass. A store read failure aborts the whole
// pass without alerting anyone; per-subject failures are isolated.
func (s *Service) Run(ctx context.Context) Result {
	if s == nil {
		return Result{}
	}
	start := time.Now()

	armed, err := s.store.ListArmed(ctx)
	if err != nil {
		s.logf("sweep: list armed error: %v", err)
		s.countSweep("error", start)
		return Result{OK: false}
	}

	now := s.clock.Now().UTC()
	triggered := 0
	for _, subject := range armed {
		if !subject.Overdue(now) {
			continue
		}
		if s.processOverdue(ctx, subject) {
			triggered++
		}
	}

	if s.metrics != nil {
		s.metrics.SubjectsAlerted.Add(float64(triggered))
	}
	s.countSweep("success", start)
	return Result{OK: true, Triggered: triggered}
}

// processOverdue alerts every guardian of one overdue subject and then
// issues the terminal disarm write. Returns whether the disarm
// actually flipped the subject.
func (s *Service) processOverdue(ctx context.Context, subject subjects.Subject) bool {
	payload := alerting.Compose(subject)
	outcomes := s.dispatcher.Fanout(ctx, subject.Guardians, payload)
	for _, outcome := range outcomes {
		if s.metrics != nil {
			s.metrics.Dispatches.WithLabelValues(outcome.Channel, string(outcome.Status)).Inc()
		}
		if outcome.Status == notify.StatusFailed {
			s.logf("sweep: dispatch failed: subject=%s guardian=%s channel=%s reason=%s",
				subject.ID, outcome.Guardian, outcome.Channel, outcome.Reason)
		}
		s.record(ctx, alertlog.Event{
			SubjectID: subject.ID,
			Kind:      alertlog.KindDispatch,
			Guardian:  outcome.Guardian,
			Channel:   outcome.Channel,
			Status:    string(outcome.Status),
			Reason:    outcome.Reason,
		})
	}

	// The disarm happens after all guardians were attempted, whatever
	// the individual outcomes. A write error leaves the subject armed;
	// the next pass will alert again, which beats silent suppression.
	flipped, err := s.store.Disarm(ctx, subject.ID)
	if err != nil {
		s.logf("sweep: disarm error: subject=%s err=%v", subject.ID, err)
		return false
	}
	if flipped {
		s.record(ctx, alertlog.Event{
			SubjectID: subject.ID,
			Kind:      alertlog.KindDisarm,
			Status:    "alerted",
		})
	}
	return flipped
}

func (s *Service) record(ctx context.Context, event alertlog.Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, event); err != nil {
		s.logf("sweep: record event error: %v", err)
	}
}

func (s *Service) countSweep(status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.SweepsTotal.WithLabelValues(status).Inc()
	s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
