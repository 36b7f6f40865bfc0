// Package sos builds manual emergency links. Unlike the sweep, which
// pushes alerts server-side, SOS hands the subject ready-made deep
// links so the message leaves from their own device.
package sos

import (
	"fmt"
	"net/url"

	"sakhi-cloud/internal/alerting"
	subjects "sakhi-cloud/internal/subjects/domain"
)

// Links are the composed deep links for one guardian.
type Links struct {
	Guardian string `json:"guardian"`
	Body     string `json:"body"`
	SMS      string `json:"sms"`
	Chat     string `json:"chat,omitempty"`
}

// Compose builds SOS links for the subject's primary guardian.
// Returns (nil, false) when no guardian has a phone number.
func Compose(subject subjects.Subject, countryCode string, latitude, longitude *float64) (*Links, bool) {
	guardian, ok := subject.PrimaryGuardian()
	if !ok {
		return nil, false
	}
	phone := subjects.NormalizePhone(guardian.Phone)
	if phone == "" {
		return nil, false
	}

	location := alerting.LocationUnknown
	if latitude != nil && longitude != nil {
		location = fmt.Sprintf("https://www.google.com/maps?q=%v,%v", *latitude, *longitude)
	}
	body := fmt.Sprintf("SOS! I need help. My location: %s", location)

	links := &Links{
		Guardian: guardian.Name,
		Body:     body,
		SMS:      fmt.Sprintf("sms:%s?body=%s", phone, url.QueryEscape(body)),
		Chat:     fmt.Sprintf("https://wa.me/%s%s?text=%s", countryCode, phone, url.QueryEscape(body)),
	}
	return links, true
}
