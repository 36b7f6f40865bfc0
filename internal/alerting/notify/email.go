package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sakhi-cloud/internal/alerting"
	subjects "sakhi-cloud/internal/subjects/domain"
)

type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// EmailChannel delivers alerts through an HTTP email provider.
type EmailChannel struct {
	endpoint string
	sender   string
	apiKey   string
	client   *http.Client
}

// EmailOption configures the email channel.
type EmailOption func(*EmailChannel)

// WithEmailHTTPClient overrides the HTTP client.
func WithEmailHTTPClient(client *http.Client) EmailOption {
	return func(ch *EmailChannel) {
		if client != nil {
			ch.client = client
		}
	}
}

// WithEmailAPIKey sets the provider bearer token.
func WithEmailAPIKey(key string) EmailOption {
	return func(ch *EmailChannel) {
		ch.apiKey = key
	}
}

// NewEmailChannel constructs an email channel.
func NewEmailChannel(endpoint, sender string, opts ...EmailOption) (*EmailChannel, error) {
	if endpoint == "" {
		return nil, errors.New("email channel: empty endpoint")
	}
	if sender == "" {
		return nil, errors.New("email channel: empty sender")
	}
	channel := &EmailChannel{
		endpoint: endpoint,
		sender:   sender,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(channel)
	}
	return channel, nil
}

// Kind implements Channel.
func (e *EmailChannel) Kind() string { return KindEmail }

// Supports implements Channel.
func (e *EmailChannel) Supports(g subjects.Guardian) bool { return g.CanEmail() }

// Send posts one alert email to the guardian's address.
func (e *EmailChannel) Send(ctx context.Context, g subjects.Guardian, payload alerting.Payload) error {
	if e == nil || e.endpoint == "" {
		return errors.New("email channel: not configured")
	}
	if !g.CanEmail() {
		return errors.New("email channel: guardian missing email address")
	}

	body, err := json.Marshal(emailPayload{
		From:    e.sender,
		To:      g.Email,
		Subject: payload.SubjectLine,
		HTML:    payload.HTML,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("email channel: non-2xx response %d", resp.StatusCode)
	}
	return nil
}
