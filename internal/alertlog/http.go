package alertlog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sakhi-cloud/internal/auth"
	"sakhi-cloud/internal/observability/metrics"
)

const defaultLookback = 30 * 24 * time.Hour

// Lister reads alert events.
type Lister interface {
	ListBySubject(ctx context.Context, subjectID string, from, to time.Time, limit int) ([]Event, error)
}

// Handler serves a subject's alert history and its exports.
type Handler struct {
	events Lister
}

// NewHandler constructs an alert history handler.
func NewHandler(events Lister) *Handler {
	return &Handler{events: events}
}

type eventDTO struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Guardian   string    `json:"guardian,omitempty"`
	Channel    string    `json:"channel,omitempty"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ServeHTTP handles GET /api/v1/alerts and GET /api/v1/exports/alerts.{csv,xlsx,pdf}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.events == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	subjectID := auth.SubjectFromContext(r.Context())
	if subjectID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	from, to, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.events.ListBySubject(r.Context(), subjectID, from, to, limit)
	if err != nil {
		http.Error(w, "query alert events error", http.StatusInternalServerError)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "alerts.csv"):
		h.writeCSV(w, events)
	case strings.HasSuffix(r.URL.Path, "alerts.xlsx"):
		h.writeXLSX(w, subjectID, events)
	case strings.HasSuffix(r.URL.Path, "alerts.pdf"):
		h.writePDF(w, subjectID, events)
	default:
		dtos := make([]eventDTO, 0, len(events))
		for _, event := range events {
			dtos = append(dtos, eventDTO{
				ID:         event.ID,
				Kind:       event.Kind,
				Guardian:   event.Guardian,
				Channel:    event.Channel,
				Status:     event.Status,
				Reason:     event.Reason,
				OccurredAt: event.OccurredAt,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dtos)
	}
}

func (h *Handler) writeCSV(w http.ResponseWriter, events []Event) {
	start := time.Now()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="alerts.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"occurred_at", "kind", "guardian", "channel", "status", "reason"})
	for _, event := range events {
		_ = writer.Write([]string{
			event.OccurredAt.Format(time.RFC3339),
			event.Kind,
			event.Guardian,
			event.Channel,
			event.Status,
			event.Reason,
		})
	}
	writer.Flush()
	metrics.ObserveExport("csv", metrics.ResultSuccess, time.Since(start))
}

func (h *Handler) writeXLSX(w http.ResponseWriter, subjectID string, events []Event) {
	start := time.Now()
	data, err := BuildIncidentXLSX(subjectID, events)
	if err != nil {
		metrics.ObserveExport("xlsx", metrics.ResultError, time.Since(start))
		http.Error(w, "build xlsx error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport("xlsx", metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="alerts.xlsx"`)
	_, _ = w.Write(data)
}

func (h *Handler) writePDF(w http.ResponseWriter, subjectID string, events []Event) {
	start := time.Now()
	data, err := BuildIncidentPDF(subjectID, events)
	if err != nil {
		metrics.ObserveExport("pdf", metrics.ResultError, time.Since(start))
		http.Error(w, "build pdf error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport("pdf", metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="alerts.pdf"`)
	_, _ = w.Write(data)
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.Add(-defaultLookback)
	to := now.Add(time.Minute)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}
