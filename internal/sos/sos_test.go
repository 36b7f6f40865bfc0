package sos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"sakhi-cloud/internal/auth"
	subjects "sakhi-cloud/internal/subjects/domain"
	"sakhi-cloud/internal/subjects/infrastructure/memory"
)

func floatPtr(v float64) *float64 { return &v }

func TestComposeWithLocation(t *testing.T) {
	subject := subjects.Subject{
		Guardians: []subjects.Guardian{{Name: "Mira", Phone: "98765 43210"}},
	}

	links, ok := Compose(subject, "91", floatPtr(12.9716), floatPtr(77.5946))
	if !ok {
		t.Fatalf("expected links")
	}
	if links.Guardian != "Mira" {
		t.Fatalf("guardian = %q", links.Guardian)
	}
	if !strings.Contains(links.Body, "https://www.google.com/maps?q=12.9716,77.5946") {
		t.Fatalf("body = %q", links.Body)
	}
	if !strings.HasPrefix(links.SMS, "sms:9876543210?body=") {
		t.Fatalf("sms link = %q", links.SMS)
	}
	if !strings.HasPrefix(links.Chat, "https://wa.me/919876543210?text=") {
		t.Fatalf("chat link = %q", links.Chat)
	}

	// The body must round-trip through the query escaping.
	parsed, err := url.Parse(links.Chat)
	if err != nil {
		t.Fatalf("parse chat link: %v", err)
	}
	if got := parsed.Query().Get("text"); got != links.Body {
		t.Fatalf("chat text = %q, want %q", got, links.Body)
	}
}

func TestComposeWithoutLocation(t *testing.T) {
	subject := subjects.Subject{
		Guardians: []subjects.Guardian{{Name: "Mira", Phone: "9876543210"}},
	}

	links, ok := Compose(subject, "91", nil, nil)
	if !ok {
		t.Fatalf("expected links")
	}
	if !strings.Contains(links.Body, "Location unknown") {
		t.Fatalf("body = %q", links.Body)
	}
}

func TestComposeNoPhone(t *testing.T) {
	subject := subjects.Subject{
		Guardians: []subjects.Guardian{{Name: "Mira", Email: "mira@example.com"}},
	}
	if _, ok := Compose(subject, "91", nil, nil); ok {
		t.Fatalf("guardian without a phone must yield no links")
	}
}

func TestHandlerServesLinks(t *testing.T) {
	repo := memory.NewSubjectRepository()
	err := repo.Create(context.Background(), &subjects.Subject{
		ID:              "subject-1",
		IntervalSeconds: 300,
		Guardians:       []subjects.Guardian{{Name: "Mira", Phone: "9876543210"}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	handler, err := NewHandler(repo, "91")
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sos?lat=12.9716&lon=77.5946", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), "subject-1", "priya@example.com"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var links Links
	if err := json.NewDecoder(rec.Body).Decode(&links); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(links.Body, "12.9716,77.5946") {
		t.Fatalf("body = %q", links.Body)
	}
}

func TestHandlerRejectsAnonymous(t *testing.T) {
	handler, _ := NewHandler(memory.NewSubjectRepository(), "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sos", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandlerNoReachableGuardian(t *testing.T) {
	repo := memory.NewSubjectRepository()
	_ = repo.Create(context.Background(), &subjects.Subject{
		ID:              "subject-1",
		IntervalSeconds: 300,
	})
	handler, _ := NewHandler(repo, "91")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sos", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), "subject-1", ""))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}
