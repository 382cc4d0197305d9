package availability

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sofia-praxis/dental-calendar/internal/appointments"
	"github.com/sofia-praxis/dental-calendar/pkg/apperrors"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

// Handler exposes the availability queries to the calendar UI.
type Handler struct {
	finder *Finder
	logger *logging.Logger

	horizonDays  int
	suggestDays  int
	suggestLimit int
}

// NewHandler creates the availability HTTP handler. The defaults bound the
// forward scans when the caller passes nothing.
func NewHandler(finder *Finder, horizonDays, suggestDays, suggestLimit int, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if horizonDays <= 0 {
		horizonDays = MaxHorizonDays
	}
	if suggestDays <= 0 {
		suggestDays = 7
	}
	if suggestLimit <= 0 {
		suggestLimit = 5
	}
	return &Handler{
		finder:       finder,
		logger:       logger,
		horizonDays:  horizonDays,
		suggestDays:  suggestDays,
		suggestLimit: suggestLimit,
	}
}

// Next handles GET /availability/next?from=&time=&days=
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := intParam(q.Get("days"), h.horizonDays)

	slot, err := h.finder.NextAvailable(r.Context(), q.Get("from"), q.Get("time"), days)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNoSlots {
			// Expected outcome, not a failure: the caller must offer the
			// manual-contact fallback.
			appointments.WriteJSON(w, http.StatusOK, map[string]any{
				"available": false,
				"message":   apperrors.MessageOf(err),
			})
			return
		}
		h.logger.Error("next available scan failed", "error", err)
		appointments.WriteError(w, err)
		return
	}
	appointments.WriteJSON(w, http.StatusOK, map[string]any{
		"available": true,
		"date":      slot.Date,
		"time":      slot.Time,
	})
}

// CheckDate handles GET /availability/{date}
func (h *Handler) CheckDate(w http.ResponseWriter, r *http.Request) {
	res, err := h.finder.CheckDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindValidation {
			h.logger.Error("check date failed", "error", err)
		}
		appointments.WriteError(w, err)
		return
	}
	appointments.WriteJSON(w, http.StatusOK, res)
}

// Suggestions handles GET /availability/suggestions?days=&limit=
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := intParam(q.Get("days"), h.suggestDays)
	limit := intParam(q.Get("limit"), h.suggestLimit)

	suggestions, err := h.finder.Suggest(r.Context(), days, limit)
	if err != nil {
		h.logger.Error("suggestions scan failed", "error", err)
		appointments.WriteError(w, err)
		return
	}
	appointments.WriteJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return def
}
