package application

import (
	"context"
	"log"
	"time"
)

// Scheduler runs sweep passes on a fixed in-process cadence, for
// deployments without an external cron. Each tick is one independent
// pass; no state is carried between ticks.
type Scheduler struct {
	service  *Service
	interval time.Duration
	logger   *log.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(service *Service, interval time.Duration, logger *log.Logger) *Scheduler {
	return &Scheduler{service: service, interval: interval, logger: logger}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.service == nil || s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := s.service.Run(ctx)
			if s.logger != nil && result.Triggered > 0 {
				s.logger.Printf("sweep: alerted %d subjects", result.Triggered)
			}
		}
	}
}
