package http

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"errors"
	"net/http"

	"sakhi-cloud/internal/auth"
	"sakhi-cloud/internal/sweep/application"
)

// Runner executes one sweep pass.
type Runner interface {
	Run(ctx context.Context) application.Result
}

// Handler triggers the sweep from an external scheduler. The caller
// authenticates with a shared-secret bearer token; a mismatch is
// rejected before any store access.
type Handler struct {
	runner Runner
	secret []byte
}

// NewHandler constructs a cron trigger handler.
func NewHandler(runner Runner, secret []byte) (*Handler, error) {
	if runner == nil {
		return nil, errors.New("sweep handler: nil runner")
	}
	if len(secret) == 0 {
		return nil, errors.New("sweep handler: empty cron secret")
	}
	return &Handler{runner: runner, secret: secret}, nil
}

// ServeHTTP handles the scheduler's trigger request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.runner == nil || len(h.secret) == 0 {
		http.Error(w, "sweep not configured", http.StatusUnauthorized)
		return
	}
	token := auth.ExtractBearer(r)
	if token == "" || !hmac.Equal([]byte(token), h.secret) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	result := h.runner.Run(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if !result.OK {
		w.WriteHeader(http.StatusInternalServerError)
	}
	_ = json.NewEncoder(w).Encode(result)
}
