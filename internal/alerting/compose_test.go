package alerting

import (
	"strings"
	"testing"

	subjects "sakhi-cloud/internal/subjects/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestComposeWithLocation(t *testing.T) {
	subject := subjects.Subject{
		ID:            "subject-1",
		DisplayName:   "Priya",
		AlertMessage:  "Blood group O+, asthma inhaler in bag",
		LastLatitude:  floatPtr(12.9716),
		LastLongitude: floatPtr(77.5946),
	}

	payload := Compose(subject)

	wantLink := "https://www.google.com/maps?q=12.9716,77.5946"
	if payload.MapLink != wantLink {
		t.Fatalf("map link = %q, want %q", payload.MapLink, wantLink)
	}
	if !strings.Contains(payload.Text, "Priya failed to check in!") {
		t.Fatalf("text missing subject name: %q", payload.Text)
	}
	if !strings.Contains(payload.Text, subject.AlertMessage) {
		t.Fatalf("text missing custom alert message: %q", payload.Text)
	}
	if !strings.Contains(payload.Text, wantLink) {
		t.Fatalf("text missing map link: %q", payload.Text)
	}
	if !strings.Contains(payload.HTML, wantLink) {
		t.Fatalf("html missing map link: %q", payload.HTML)
	}
	if payload.SubjectLine == "" {
		t.Fatalf("expected a non-empty email subject line")
	}
}

func TestComposeLocationUnknown(t *testing.T) {
	payload := Compose(subjects.Subject{ID: "subject-1", DisplayName: "Priya"})

	if payload.MapLink != "" {
		t.Fatalf("expected empty map link, got %q", payload.MapLink)
	}
	if !strings.Contains(payload.Text, LocationUnknown) {
		t.Fatalf("text must carry explicit unknown-location marker: %q", payload.Text)
	}
	if !strings.Contains(payload.HTML, LocationUnknown) {
		t.Fatalf("html must carry explicit unknown-location marker: %q", payload.HTML)
	}
}

func TestComposeOnlyOneCoordinate(t *testing.T) {
	payload := Compose(subjects.Subject{ID: "subject-1", LastLatitude: floatPtr(12.9)})
	if payload.MapLink != "" {
		t.Fatalf("a single coordinate must not produce a map link")
	}
	if !strings.Contains(payload.Text, LocationUnknown) {
		t.Fatalf("text missing unknown-location marker: %q", payload.Text)
	}
}

func TestComposeNameFallback(t *testing.T) {
	payload := Compose(subjects.Subject{ID: "subject-1"})
	if !strings.Contains(payload.Text, "A user failed to check in!") {
		t.Fatalf("expected generic placeholder name, got %q", payload.Text)
	}
}

func TestComposeDeterministic(t *testing.T) {
	subject := subjects.Subject{
		ID:            "subject-1",
		DisplayName:   "Priya",
		LastLatitude:  floatPtr(12.9716),
		LastLongitude: floatPtr(77.5946),
	}
	first := Compose(subject)
	second := Compose(subject)
	if first != second {
		t.Fatalf("compose must be deterministic for the same snapshot")
	}
}

func TestComposeEscapesHTML(t *testing.T) {
	payload := Compose(subjects.Subject{ID: "subject-1", DisplayName: "<script>x</script>"})
	if strings.Contains(payload.HTML, "<script>") {
		t.Fatalf("display name must be escaped in html body: %q", payload.HTML)
	}
}
