package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	middleware := NewMiddleware([]byte("secret"), NewDefaultPolicy([]string{"/healthz"}, nil))
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareExemptPath(t *testing.T) {
	middleware := NewMiddleware([]byte("secret"), NewDefaultPolicy([]string{"/healthz"}, []string{"/internal/"}))
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/healthz", "/internal/cron/sweep"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("path %s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestMiddlewarePassesIdentity(t *testing.T) {
	secret := []byte("secret")
	token, err := NewToken("subject-1", "priya@example.com", secret, time.Hour)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	var gotSubject, gotEmail string
	middleware := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = SubjectFromContext(r.Context())
		gotEmail = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotSubject != "subject-1" || gotEmail != "priya@example.com" {
		t.Fatalf("identity = (%q, %q)", gotSubject, gotEmail)
	}
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	token, err := NewToken("subject-1", "", []byte("secret-a"), time.Hour)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if _, err := ParseJWT(token, []byte("secret-b")); err == nil {
		t.Fatalf("expected signature validation failure")
	}
}

func TestParseJWTRejectsExpired(t *testing.T) {
	token, err := NewToken("subject-1", "", []byte("secret"), -time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if _, err := ParseJWT(token, []byte("secret")); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
