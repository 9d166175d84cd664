package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/neexbeast/skycast/internal/session"
	"github.com/neexbeast/skycast/internal/weather"
)

var validate = validator.New()

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	sess Session
	log  *slog.Logger
	now  func() time.Time
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(sess Session, log *slog.Logger) *Handlers {
	return &Handlers{sess: sess, log: log, now: time.Now}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody decodes and validates a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validating request body: %w", err)
	}
	return nil
}

// sessionError maps session errors onto HTTP statuses.
func (h *Handlers) sessionError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, session.ErrNoSelection), errors.Is(err, session.ErrNotEditing):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNotSaved):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "session is shutting down")
	case errors.Is(err, session.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "session is starting")
	default:
		h.log.Error("session operation failed", "op", op, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// GetSession handles GET /api/v1/session.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.sess.Snapshot()
	if err != nil {
		h.sessionError(w, "snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, toViewDTO(v, h.now()))
}

// PutSearch handles PUT /api/v1/search. The search itself runs after the
// debounce interval.
func (h *Handlers) PutSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.sess.SetSearchText(req.Text); err != nil {
		h.sessionError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"search_text": req.Text})
}

// PostSelection handles POST /api/v1/selection.
func (h *Handlers) PostSelection(w http.ResponseWriter, r *http.Request) {
	var req placeDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.sess.SelectPlace(req.place()); err != nil {
		h.sessionError(w, "select", err)
		return
	}
	writeJSON(w, http.StatusAccepted, req)
}

// DeleteSelection handles DELETE /api/v1/selection.
func (h *Handlers) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.DismissWeather(); err != nil {
		h.sessionError(w, "dismiss", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWeather handles GET /api/v1/weather: the summary for the selected place.
func (h *Handlers) GetWeather(w http.ResponseWriter, r *http.Request) {
	v, err := h.sess.Snapshot()
	if err != nil {
		h.sessionError(w, "snapshot", err)
		return
	}
	if v.Selected == nil || v.SelectedWeather == nil {
		writeError(w, http.StatusNotFound, "no weather for the selected place")
		return
	}
	writeJSON(w, http.StatusOK, weather.Summarize(*v.Selected, v.SelectedWeather, h.now()))
}

// PostPlaces handles POST /api/v1/places: saves the selected place.
func (h *Handlers) PostPlaces(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.SaveSelectedPlace(); err != nil {
		h.sessionError(w, "save", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePlaces handles DELETE /api/v1/places while editing.
func (h *Handlers) DeletePlaces(w http.ResponseWriter, r *http.Request) {
	var req placeDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.sess.RemovePlace(req.place()); err != nil {
		h.sessionError(w, "remove", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostEdit handles POST /api/v1/places/edit.
func (h *Handlers) PostEdit(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.EditPlaces(); err != nil {
		h.sessionError(w, "edit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEdit handles DELETE /api/v1/places/edit and persists the list.
func (h *Handlers) DeleteEdit(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.DoneEditingPlaces(); err != nil {
		h.sessionError(w, "done editing", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteToast handles DELETE /api/v1/toast.
func (h *Handlers) DeleteToast(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.DismissToast(); err != nil {
		h.sessionError(w, "dismiss toast", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthHandlerFunc returns an http.HandlerFunc that checks the store.
func HealthHandlerFunc(store Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Error("health check: store ping failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": "error"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": "ok"})
	}
}
