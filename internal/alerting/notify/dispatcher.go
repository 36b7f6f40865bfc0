package notify

import (
	"context"
	"sync"
	"time"

	"sakhi-cloud/internal/alerting"
	subjects "sakhi-cloud/internal/subjects/domain"
)

// Dispatcher fans one payload out to every (guardian, channel) pair.
// Sends are independent: one pair's failure never blocks another, and
// every send runs under its own timeout so no provider can stall a
// sweep pass.
type Dispatcher struct {
	channels    []Channel
	sendTimeout time.Duration
	maxInFlight int
}

// DispatcherOption configures the dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSendTimeout bounds each individual send.
func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

// WithMaxInFlight caps concurrent sends to avoid overwhelming the
// outbound providers.
func WithMaxInFlight(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxInFlight = n
		}
	}
}

// NewDispatcher constructs a dispatcher over the configured channels.
func NewDispatcher(channels []Channel, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		channels:    channels,
		sendTimeout: 10 * time.Second,
		maxInFlight: 4,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fanout attempts the payload on every channel each guardian supports.
// Guardians lacking a channel's credentials yield a Skipped outcome for
// that channel. The returned slice has one entry per (guardian,
// configured channel) pair, in input order.
func (d *Dispatcher) Fanout(ctx context.Context, guardians []subjects.Guardian, payload alerting.Payload) []Outcome {
	if d == nil || len(d.channels) == 0 || len(guardians) == 0 {
		return nil
	}

	outcomes := make([]Outcome, len(guardians)*len(d.channels))
	sem := make(chan struct{}, d.maxInFlight)
	var wg sync.WaitGroup

	for gi, guardian := range guardians {
		for ci, channel := range d.channels {
			idx := gi*len(d.channels) + ci
			outcome := Outcome{Guardian: guardian.Name, Channel: channel.Kind()}

			if !channel.Supports(guardian) {
				outcome.Status = StatusSkipped
				outcome.Reason = "missing credentials"
				outcomes[idx] = outcome
				continue
			}

			wg.Add(1)
			go func(idx int, channel Channel, guardian subjects.Guardian, outcome Outcome) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				// In-flight sends finish or fail on their own timeout
				// even if the sweep invocation itself is cancelled.
				sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.sendTimeout)
				defer cancel()

				if err := channel.Send(sendCtx, guardian, payload); err != nil {
					outcome.Status = StatusFailed
					outcome.Reason = err.Error()
				} else {
					outcome.Status = StatusDelivered
				}
				outcomes[idx] = outcome
			}(idx, channel, guardian, outcome)
		}
	}
	wg.Wait()
	return outcomes
}
