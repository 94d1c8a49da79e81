// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Bigdanydan/dj-calendar-pro/internal/model"
	"github.com/Bigdanydan/dj-calendar-pro/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// EventHandler holds all HTTP handlers for the booking API.
type EventHandler struct {
	svc    *service.EventService
	logger *slog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{svc: svc, logger: logger}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError reports a failed request. Only a missing event changes the
// status code; every other failure is a 200 with success=false, which the
// front-end relies on.
func (h *EventHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: model.ErrNotFound.Error()})
		return
	}

	level := slog.LevelError
	if errors.Is(err, model.ErrValidation) {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, "request failed",
		"request_id", chimiddleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusOK, model.ErrorResponse{Error: err.Error()})
}

func decodeFields(r *http.Request) (service.Fields, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	var fields service.Fields
	if err := dec.Decode(&fields); err != nil {
		return nil, &model.ValidationError{Field: "body", Reason: err.Error()}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &model.ValidationError{Field: "body", Reason: "unexpected data after JSON object"}
	}
	if fields == nil {
		fields = service.Fields{}
	}
	return fields, nil
}

// eventID parses the {id} path segment. Anything that is not a positive
// integer cannot name an event.
func eventID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrNotFound
	}
	return id, nil
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListEvents handles GET /api/events?search=&type=&status=
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.svc.ListEvents(r.Context(), q.Get("search"), q.Get("type"), q.Get("status"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, model.EventsResponse{Success: true, Events: events})
}

// CreateEvent handles POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.EventResponse{Success: true, Event: event})
}

// UpdateEvent handles PUT /api/events/{id}
// Only the fields present in the body are changed.
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// A decode failure is reported only after the event is found.
	fields, decodeErr := decodeFields(r)

	event, err := h.svc.UpdateEventWith(r.Context(), id, func() (service.Fields, error) {
		return fields, decodeErr
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.EventResponse{Success: true, Event: event})
}

// DeleteEvent handles DELETE /api/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteEvent(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: "Event deleted"})
}

// Stats handles GET /api/events/stats
func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.StatsResponse{Success: true, Stats: h.svc.Stats(r.Context())})
}

// Analytics handles GET /api/events/analytics
func (h *EventHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.AnalyticsResponse{Success: true, Analytics: h.svc.Analytics(r.Context())})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{Success: true, Status: "healthy"})
}
