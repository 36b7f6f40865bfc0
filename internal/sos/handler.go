package sos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"sakhi-cloud/internal/auth"
	subjects "sakhi-cloud/internal/subjects/domain"
)

// Store is the subject lookup the handler needs.
type Store interface {
	Get(ctx context.Context, id string) (*subjects.Subject, error)
}

// Handler serves GET /api/v1/sos: composed deep links the client opens
// directly.
type Handler struct {
	store       Store
	countryCode string
}

// NewHandler constructs an SOS handler.
func NewHandler(store Store, countryCode string) (*Handler, error) {
	if store == nil {
		return nil, errors.New("sos handler: nil store")
	}
	if countryCode == "" {
		countryCode = "91"
	}
	return &Handler{store: store, countryCode: countryCode}, nil
}

// ServeHTTP handles the SOS link request. Coordinates come from the
// query string so the links carry the device's live position rather
// than the last stored one.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	subjectID := auth.SubjectFromContext(r.Context())
	if subjectID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	subject, err := h.store.Get(r.Context(), subjectID)
	if err != nil {
		http.Error(w, "load profile", http.StatusInternalServerError)
		return
	}
	if subject == nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}

	latitude := parseCoord(r.URL.Query().Get("lat"))
	longitude := parseCoord(r.URL.Query().Get("lon"))

	links, ok := Compose(*subject, h.countryCode, latitude, longitude)
	if !ok {
		http.Error(w, "no guardian with a phone number", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(links)
}

func parseCoord(raw string) *float64 {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}
