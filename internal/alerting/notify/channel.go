// Package notify delivers composed alerts to guardians over the
// outbound channels a deployment has configured.
package notify

import (
	"context"

	"sakhi-cloud/internal/alerting"
	subjects "sakhi-cloud/internal/subjects/domain"
)

// Channel kinds.
const (
	KindPush  = "push"
	KindEmail = "email"
)

// Status is the result of one send attempt.
type Status string

const (
	// StatusDelivered means the provider accepted the message.
	StatusDelivered Status = "delivered"
	// StatusSkipped means the guardian lacks the channel's credentials.
	// Expected steady state for partially-configured guardians, not an
	// error.
	StatusSkipped Status = "skipped"
	// StatusFailed means the outbound call errored or timed out.
	StatusFailed Status = "failed"
)

// Outcome records one (guardian, channel) send attempt.
type Outcome struct {
	Guardian string
	Channel  string
	Status   Status
	Reason   string
}

// Channel sends one composed alert to one guardian.
type Channel interface {
	Kind() string
	// Supports reports whether the guardian carries the credentials
	// this channel requires.
	Supports(g subjects.Guardian) bool
	Send(ctx context.Context, g subjects.Guardian, payload alerting.Payload) error
}
