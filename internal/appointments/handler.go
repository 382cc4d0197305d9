package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sofia-praxis/dental-calendar/pkg/apperrors"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

// Handler exposes the appointment CRUD surface consumed by the calendar UI.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates the appointments HTTP handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// WriteJSON writes a JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders the structured error envelope the UI endpoints share:
// {"error": {"kind": "...", "message": "..."}} with a status derived from
// the error kind. Foreign errors surface as a retryable storage problem.
func WriteError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindSlotTaken:
		status = http.StatusConflict
	case apperrors.KindStorage, apperrors.Kind(""):
		status = http.StatusServiceUnavailable
		kind = apperrors.KindStorage
	}
	WriteJSON(w, status, map[string]any{
		"error": map[string]string{
			"kind":    string(kind),
			"message": apperrors.MessageOf(err),
		},
	})
}

// List handles GET /appointments?date=&phone=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f := Filter{
		Date:  r.URL.Query().Get("date"),
		Phone: r.URL.Query().Get("phone"),
	}
	if f.Date != "" {
		if err := ValidateDate(f.Date); err != nil {
			WriteError(w, err)
			return
		}
	}
	list, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.logger.Error("list appointments failed", "error", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// Create handles POST /appointments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, apperrors.Validation("invalid json: %v", err))
		return
	}
	a, err := h.svc.Create(r.Context(), in)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSlotTaken) && apperrors.KindOf(err) != apperrors.KindValidation {
			h.logger.Error("create appointment failed", "error", err)
		}
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, a)
}

// Update handles PUT /appointments/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	var patch UpdatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteError(w, apperrors.Validation("invalid json: %v", err))
		return
	}
	a, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /appointments/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid appointment id %q", raw)
	}
	return id, nil
}
