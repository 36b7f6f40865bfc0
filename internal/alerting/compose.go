// Package alerting builds the alert content sent to guardians when a
// subject misses a check-in. Composition is pure: the same subject
// snapshot always yields the same payload, so a payload can be rebuilt
// safely if a send has to be reattempted.
package alerting

import (
	"fmt"
	"html"

	subjects "sakhi-cloud/internal/subjects/domain"
)

const (
	// LocationUnknown is emitted when no coordinates are on record.
	// The location line is never omitted.
	LocationUnknown = "Location unknown"

	fallbackName = "A user"

	emailSubject = "EMERGENCY: missed safety check-in"
)

// Payload is one composed alert, in both channel variants.
type Payload struct {
	// SubjectLine is the email subject line.
	SubjectLine string
	// Text is the plain-text body for push-message channels.
	Text string
	// HTML is the body for email channels.
	HTML string
	// MapLink is the Google Maps URL, empty when location is unknown.
	MapLink string
}

// Compose renders the alert for an overdue subject.
func Compose(s subjects.Subject) Payload {
	name := s.DisplayName
	if name == "" {
		name = fallbackName
	}

	location := LocationUnknown
	mapLink := ""
	if s.HasLocation() {
		mapLink = fmt.Sprintf("https://www.google.com/maps?q=%v,%v", *s.LastLatitude, *s.LastLongitude)
		location = mapLink
	}

	text := fmt.Sprintf("🚨 *EMERGENCY ALERT*\n\n%s failed to check in!", name)
	if s.AlertMessage != "" {
		text += fmt.Sprintf("\n\n*Msg:* %q", s.AlertMessage)
	}
	text += fmt.Sprintf("\n\n*Location:* %s", location)

	return Payload{
		SubjectLine: emailSubject,
		Text:        text,
		HTML:        composeHTML(name, s.AlertMessage, mapLink),
		MapLink:     mapLink,
	}
}

func composeHTML(name, message, mapLink string) string {
	body := fmt.Sprintf("<h2>🚨 Emergency Alert</h2><p><strong>%s</strong> failed to check in!</p>", html.EscapeString(name))
	if message != "" {
		body += fmt.Sprintf("<p>Message: %s</p>", html.EscapeString(message))
	}
	if mapLink != "" {
		body += fmt.Sprintf("<p>Last known location: <a href=%q>%s</a></p>", mapLink, mapLink)
	} else {
		body += fmt.Sprintf("<p>Last known location: %s</p>", LocationUnknown)
	}
	return body
}
