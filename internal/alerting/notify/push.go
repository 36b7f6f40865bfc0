package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"sakhi-cloud/internal/alerting"
	subjects "sakhi-cloud/internal/subjects/domain"
)

// PushChannel delivers alerts through a phone-linked push-message
// provider. The provider takes a GET request with the recipient number,
// the URL-encoded text and the guardian's personal API key.
type PushChannel struct {
	baseURL     string
	countryCode string
	client      *http.Client
}

// PushOption configures the push channel.
type PushOption func(*PushChannel)

// WithPushHTTPClient overrides the HTTP client.
func WithPushHTTPClient(client *http.Client) PushOption {
	return func(ch *PushChannel) {
		if client != nil {
			ch.client = client
		}
	}
}

// WithCountryCode overrides the dial prefix prepended to guardian
// phone numbers.
func WithCountryCode(code string) PushOption {
	return func(ch *PushChannel) {
		if code != "" {
			ch.countryCode = code
		}
	}
}

// NewPushChannel constructs a push channel.
func NewPushChannel(baseURL string, opts ...PushOption) (*PushChannel, error) {
	if baseURL == "" {
		return nil, errors.New("push channel: empty base url")
	}
	channel := &PushChannel{
		baseURL:     baseURL,
		countryCode: "91",
		client:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(channel)
	}
	return channel, nil
}

// Kind implements Channel.
func (p *PushChannel) Kind() string { return KindPush }

// Supports implements Channel.
func (p *PushChannel) Supports(g subjects.Guardian) bool { return g.CanPush() }

// Send fires one push message to the guardian's phone.
func (p *PushChannel) Send(ctx context.Context, g subjects.Guardian, payload alerting.Payload) error {
	if p == nil || p.baseURL == "" {
		return errors.New("push channel: not configured")
	}
	if !g.CanPush() {
		return errors.New("push channel: guardian missing phone or api key")
	}

	query := url.Values{}
	query.Set("phone", p.countryCode+subjects.NormalizePhone(g.Phone))
	query.Set("text", payload.Text)
	query.Set("apikey", g.PushKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push channel: non-2xx response %d", resp.StatusCode)
	}
	return nil
}
