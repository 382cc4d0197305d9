package assistant

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sofia-praxis/dental-calendar/internal/appointments"
	"github.com/sofia-praxis/dental-calendar/internal/availability"
	"github.com/sofia-praxis/dental-calendar/pkg/apperrors"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

// BookingNote marks appointments created through the assistant webhook.
const BookingNote = "Via Sofia gebucht"

// Handler serves the assistant webhook and briefing endpoints.
type Handler struct {
	svc       *appointments.Service
	finder    *availability.Finder
	transport Transport
	logger    *logging.Logger
	now       func() time.Time
}

// NewHandler creates the assistant handler.
func NewHandler(svc *appointments.Service, finder *availability.Finder, transport Transport, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if transport == nil {
		transport = &webhookTransport{}
	}
	return &Handler{svc: svc, finder: finder, transport: transport, logger: logger, now: time.Now}
}

// WithClock overrides the clock; used by tests for deterministic "today".
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// BookRequest is the webhook payload the assistant sends after collecting
// the patient's wishes.
type BookRequest struct {
	PatientName   string `json:"patientName"`
	PatientPhone  string `json:"patientPhone"`
	RequestedDate string `json:"requestedDate"`
	RequestedTime string `json:"requestedTime"`
	TreatmentType string `json:"treatmentType"`
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, reply Reply) {
	if err := h.transport.Deliver(r.Context(), reply); err != nil {
		h.logger.Error("assistant transport delivery failed", "transport", h.transport.Name(), "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(reply)
}

// Book handles POST /assistant/book. It runs through the exact same
// collision check as the UI create endpoint; on a collision the reply
// offers the next free slot instead of a bare failure.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, Reply{Success: false, Message: msgMissingBookingFields})
		return
	}

	a, err := h.svc.Create(r.Context(), appointments.CreateInput{
		PatientName:   req.PatientName,
		Phone:         req.PatientPhone,
		Date:          req.RequestedDate,
		StartTime:     req.RequestedTime,
		TreatmentType: req.TreatmentType,
		Notes:         BookingNote,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrSlotTaken) {
			reply := Reply{Success: false}
			alt, altErr := h.finder.NextAvailable(r.Context(), req.RequestedDate, req.RequestedTime, 0)
			if altErr == nil {
				reply.Message = slotTakenWithAlternative(alt)
				reply.Alternative = &ReplySlot{Date: alt.Date, Time: alt.Time}
			} else {
				reply.Message = slotTakenWithAlternative(nil)
			}
			h.respond(w, r, reply)
			return
		}
		h.logger.Error("assistant booking failed", "error", err)
		h.respond(w, r, Reply{Success: false, Message: germanErrorMessage(err)})
		return
	}

	h.respond(w, r, Reply{
		Success:     true,
		Message:     bookedConfirmation(a.Date, a.StartTime),
		Appointment: a,
	})
}

type briefing struct {
	Message      string                     `json:"message"`
	Appointments []appointments.Appointment `json:"appointments"`
	Count        int                        `json:"count"`
}

func (h *Handler) writeBriefing(w http.ResponseWriter, b briefing) {
	if b.Appointments == nil {
		b.Appointments = []appointments.Appointment{}
	}
	b.Count = len(b.Appointments)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(b)
}

func (h *Handler) briefingError(w http.ResponseWriter, err error) {
	h.logger.Error("assistant briefing failed", "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": germanErrorMessage(err)})
}

// Today handles GET /assistant/today.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	today := availability.DateString(h.now())
	list, err := h.svc.List(r.Context(), appointments.Filter{Date: today})
	if err != nil {
		h.briefingError(w, err)
		return
	}
	h.writeBriefing(w, briefing{Message: todayMessage(today, list), Appointments: list})
}

// Patient handles GET /assistant/patient/{phone}: the patient's own
// upcoming appointments.
func (h *Handler) Patient(w http.ResponseWriter, r *http.Request) {
	phone := appointments.NormalizePhone(chi.URLParam(r, "phone"))
	today := availability.DateString(h.now())
	list, err := h.svc.List(r.Context(), appointments.Filter{Phone: phone, FromDate: today})
	if err != nil {
		h.briefingError(w, err)
		return
	}
	h.writeBriefing(w, briefing{Message: patientMessage(list), Appointments: list})
}

// Week handles GET /assistant/week: Monday through Sunday of the current
// week, narrated per day.
func (h *Handler) Week(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	// Walk back to Monday on local calendar days.
	monday := now
	for monday.Weekday() != time.Monday {
		monday = monday.AddDate(0, 0, -1)
	}
	sunday := monday.AddDate(0, 0, 6)

	list, err := h.svc.List(r.Context(), appointments.Filter{FromDate: availability.DateString(monday)})
	if err != nil {
		h.briefingError(w, err)
		return
	}
	endDate := availability.DateString(sunday)
	weekList := make([]appointments.Appointment, 0, len(list))
	dayGroups := make(map[string][]appointments.Appointment)
	var order []string
	for _, a := range list {
		if a.Date > endDate {
			continue
		}
		weekList = append(weekList, a)
		day := DayName(a.Date)
		if _, seen := dayGroups[day]; !seen {
			order = append(order, day)
		}
		dayGroups[day] = append(dayGroups[day], a)
	}

	h.writeBriefing(w, briefing{Message: weekMessage(dayGroups, order), Appointments: weekList})
}

// Upcoming handles GET /assistant/upcoming: the next 30 days, capped at
// ten entries, with a pointer to the very next appointment.
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	today := availability.DateString(now)
	horizon := availability.DateString(now.AddDate(0, 0, 30))

	list, err := h.svc.List(r.Context(), appointments.Filter{FromDate: today})
	if err != nil {
		h.briefingError(w, err)
		return
	}
	upcoming := make([]appointments.Appointment, 0, 10)
	for _, a := range list {
		if a.Date > horizon {
			continue
		}
		upcoming = append(upcoming, a)
		if len(upcoming) == 10 {
			break
		}
	}

	h.writeBriefing(w, briefing{Message: upcomingMessage(upcoming), Appointments: upcoming})
}
