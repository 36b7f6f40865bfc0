package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"sakhi-cloud/internal/alertlog"
	"sakhi-cloud/internal/auth"
	"sakhi-cloud/internal/observability/metrics"
	subjects "sakhi-cloud/internal/subjects/domain"
)

// Store is the subject repository surface the client API consumes.
type Store interface {
	Get(ctx context.Context, id string) (*subjects.Subject, error)
	Create(ctx context.Context, subject *subjects.Subject) error
	UpdateSettings(ctx context.Context, id, displayName, alertMessage string, intervalSeconds int, guardians []subjects.Guardian) error
	Arm(ctx context.Context, id string, at time.Time, latitude, longitude *float64) error
	CheckIn(ctx context.Context, id string, at time.Time, latitude, longitude *float64) error
	Disarm(ctx context.Context, id string) (bool, error)
}

// Handler serves the authenticated client profile API: the arm /
// check-in / disarm state transitions plus profile and guardian
// settings. The first successful request creates a disarmed profile.
type Handler struct {
	store    Store
	recorder alertlog.Recorder
}

// NewHandler constructs a profile handler.
func NewHandler(store Store, recorder alertlog.Recorder) (*Handler, error) {
	if store == nil {
		return nil, errors.New("profile handler: nil store")
	}
	return &Handler{store: store, recorder: recorder}, nil
}

type guardianDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	PushKey string `json:"push_key,omitempty"`
	Email   string `json:"email,omitempty"`
}

type profileDTO struct {
	ID                 string        `json:"id"`
	Email              string        `json:"email,omitempty"`
	DisplayName        string        `json:"display_name,omitempty"`
	AlertMessage       string        `json:"alert_message,omitempty"`
	Armed              bool          `json:"armed"`
	LastConfirmationAt *time.Time    `json:"last_confirmation_at,omitempty"`
	IntervalSeconds    int           `json:"interval_seconds"`
	LastLatitude       *float64      `json:"last_latitude,omitempty"`
	LastLongitude      *float64      `json:"last_longitude,omitempty"`
	Guardians          []guardianDTO `json:"guardians"`
}

// ServeHTTP routes profile requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.store == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	subjectID := auth.SubjectFromContext(r.Context())
	if subjectID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/api/v1/profile" && r.Method == http.MethodGet:
		h.handleGet(w, r, subjectID)
	case path == "/api/v1/profile" && r.Method == http.MethodPut:
		h.handleUpdateSettings(w, r, subjectID)
	case path == "/api/v1/profile/arm" && r.Method == http.MethodPost:
		h.handleArm(w, r, subjectID)
	case path == "/api/v1/profile/checkin" && r.Method == http.MethodPost:
		h.handleCheckIn(w, r, subjectID)
	case path == "/api/v1/profile/disarm" && r.Method == http.MethodPost:
		h.handleDisarm(w, r, subjectID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, subjectID string) {
	subject, err := h.loadOrCreate(r.Context(), subjectID)
	if err != nil {
		http.Error(w, "load profile error", http.StatusInternalServerError)
		return
	}
	respondProfile(w, subject)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request, subjectID string) {
	var req struct {
		DisplayName     string        `json:"display_name"`
		AlertMessage    string        `json:"alert_message"`
		IntervalSeconds int           `json:"interval_seconds"`
		Guardians       []guardianDTO `json:"guardians"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	guardians := make([]subjects.Guardian, 0, len(req.Guardians))
	for _, g := range req.Guardians {
		if strings.TrimSpace(g.Name) == "" {
			http.Error(w, "guardian name is required", http.StatusBadRequest)
			return
		}
		guardians = append(guardians, subjects.Guardian{
			Name:    g.Name,
			Phone:   subjects.NormalizePhone(g.Phone),
			PushKey: strings.TrimSpace(g.PushKey),
			Email:   strings.TrimSpace(g.Email),
		})
	}

	if _, err := h.loadOrCreate(r.Context(), subjectID); err != nil {
		http.Error(w, "load profile error", http.StatusInternalServerError)
		return
	}
	if err := h.store.UpdateSettings(r.Context(), subjectID, req.DisplayName, req.AlertMessage, req.IntervalSeconds, guardians); err != nil {
		http.Error(w, "update settings error", http.StatusInternalServerError)
		return
	}
	subject, err := h.store.Get(r.Context(), subjectID)
	if err != nil || subject == nil {
		http.Error(w, "load profile error", http.StatusInternalServerError)
		return
	}
	respondProfile(w, subject)
}

type coordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *Handler) handleArm(w http.ResponseWriter, r *http.Request, subjectID string) {
	var req coordinates
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if _, err := h.loadOrCreate(r.Context(), subjectID); err != nil {
		http.Error(w, "load profile error", http.StatusInternalServerError)
		return
	}
	if err := h.store.Arm(r.Context(), subjectID, time.Now().UTC(), req.Latitude, req.Longitude); err != nil {
		http.Error(w, "arm error", http.StatusInternalServerError)
		return
	}
	metrics.IncCheckIn("arm")
	h.respondCurrent(w, r.Context(), subjectID)
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request, subjectID string) {
	var req coordinates
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
	}
	if err := h.store.CheckIn(r.Context(), subjectID, time.Now().UTC(), req.Latitude, req.Longitude); err != nil {
		http.Error(w, "check-in error", http.StatusInternalServerError)
		return
	}
	metrics.IncCheckIn("checkin")
	h.respondCurrent(w, r.Context(), subjectID)
}

func (h *Handler) handleDisarm(w http.ResponseWriter, r *http.Request, subjectID string) {
	flipped, err := h.store.Disarm(r.Context(), subjectID)
	if err != nil {
		http.Error(w, "disarm error", http.StatusInternalServerError)
		return
	}
	if flipped {
		metrics.IncCheckIn("disarm")
		if h.recorder != nil {
			_ = h.recorder.Record(r.Context(), alertlog.Event{
				SubjectID: subjectID,
				Kind:      alertlog.KindDisarm,
				Status:    "manual",
			})
		}
	}
	h.respondCurrent(w, r.Context(), subjectID)
}

// loadOrCreate fetches the subject, creating a disarmed profile on
// first contact.
func (h *Handler) loadOrCreate(ctx context.Context, subjectID string) (*subjects.Subject, error) {
	subject, err := h.store.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject != nil {
		return subject, nil
	}
	subject = &subjects.Subject{
		ID:              subjectID,
		Email:           auth.EmailFromContext(ctx),
		IntervalSeconds: 300,
	}
	if err := h.store.Create(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (h *Handler) respondCurrent(w http.ResponseWriter, ctx context.Context, subjectID string) {
	subject, err := h.store.Get(ctx, subjectID)
	if err != nil || subject == nil {
		http.Error(w, "load profile error", http.StatusInternalServerError)
		return
	}
	respondProfile(w, subject)
}

func respondProfile(w http.ResponseWriter, subject *subjects.Subject) {
	dto := profileDTO{
		ID:              subject.ID,
		Email:           subject.Email,
		DisplayName:     subject.DisplayName,
		AlertMessage:    subject.AlertMessage,
		Armed:           subject.Armed,
		IntervalSeconds: subject.IntervalSeconds,
		LastLatitude:    subject.LastLatitude,
		LastLongitude:   subject.LastLongitude,
		Guardians:       make([]guardianDTO, 0, len(subject.Guardians)),
	}
	if !subject.LastConfirmationAt.IsZero() {
		at := subject.LastConfirmationAt
		dto.LastConfirmationAt = &at
	}
	for _, g := range subject.Guardians {
		dto.Guardians = append(dto.Guardians, guardianDTO{Name: g.Name, Phone: g.Phone, PushKey: g.PushKey, Email: g.Email})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dto)
}
