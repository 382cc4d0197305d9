package appointments

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sofia-praxis/dental-calendar/internal/observability/metrics"
	"github.com/sofia-praxis/dental-calendar/pkg/apperrors"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

var tracer = otel.Tracer("dentalcalendar.internal.appointments")

// EventPublisher pushes mutations to connected calendar viewers. Implemented
// by the events hub; a nil-safe no-op is acceptable in tests.
type EventPublisher interface {
	AppointmentCreated(a Appointment)
	AppointmentUpdated(a Appointment)
	AppointmentDeleted(id int64)
}

// Service applies booking rules on top of the store and broadcasts every
// successful mutation. It is the single source of truth for both the
// calendar UI and the assistant webhook.
type Service struct {
	store     *Store
	publisher EventPublisher
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// NewService constructs the appointment service.
func NewService(store *Store, publisher EventPublisher, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("appointments: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, publisher: publisher, metrics: m, logger: logger}
}

// Store exposes the underlying store for the availability engine.
func (s *Service) Store() *Store {
	return s.store
}

// List returns appointments matching the filter, ordered by (date, startTime).
func (s *Service) List(ctx context.Context, f Filter) ([]Appointment, error) {
	return s.store.List(ctx, f)
}

// Get loads a single appointment by id.
func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.store.GetByID(ctx, id)
}

// Create validates, applies defaults (end = start + 30min, generic
// treatment label, confirmed status) and inserts. A collision with an
// existing non-cancelled appointment at the same (date, startTime) returns
// ErrSlotTaken; the caller is expected to offer an alternative slot.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.create")
	defer span.End()

	if err := in.Validate(); err != nil {
		s.metrics.ObserveBooking("rejected")
		return nil, err
	}

	a := &Appointment{
		PatientName:   in.PatientName,
		Phone:         NormalizePhone(in.Phone),
		Date:          in.Date,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		TreatmentType: in.TreatmentType,
		Notes:         in.Notes,
		Status:        StatusConfirmed,
	}
	if a.EndTime == "" {
		end, err := AddMinutes(a.StartTime, DefaultDurationMinutes)
		if err != nil {
			return nil, err
		}
		a.EndTime = end
	}
	if a.TreatmentType == "" {
		a.TreatmentType = DefaultTreatment
	}

	span.SetAttributes(
		attribute.String("calendar.date", a.Date),
		attribute.String("calendar.start_time", a.StartTime),
	)

	if err := s.store.Insert(ctx, a); err != nil {
		if errors.Is(err, apperrors.ErrSlotTaken) {
			s.metrics.ObserveBooking("slot_taken")
			s.logger.Info("booking collision", "date", a.Date, "start_time", a.StartTime)
			return nil, err
		}
		span.RecordError(err)
		s.metrics.ObserveBooking("error")
		return nil, err
	}

	s.metrics.ObserveBooking("created")
	s.logger.Info("appointment created",
		"id", a.ID, "date", a.Date, "start_time", a.StartTime, "patient", a.PatientName)
	if s.publisher != nil {
		s.publisher.AppointmentCreated(*a)
	}
	return a, nil
}

// Update applies a patch (reschedule or status change). The slot-uniqueness
// invariant is enforced on update as well: moving onto an occupied slot
// fails with ErrSlotTaken and the stored row is left untouched, so the UI
// can re-sync its optimistic view.
func (s *Service) Update(ctx context.Context, id int64, patch UpdatePatch) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.update")
	defer span.End()
	span.SetAttributes(attribute.Int64("calendar.appointment_id", id))

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Date != nil {
		a.Date = *patch.Date
	}
	if patch.StartTime != nil {
		a.StartTime = *patch.StartTime
		// A reschedule without an explicit end keeps the default duration.
		if patch.EndTime == nil {
			end, err := AddMinutes(a.StartTime, DefaultDurationMinutes)
			if err != nil {
				return nil, err
			}
			a.EndTime = end
		}
	}
	if patch.EndTime != nil {
		a.EndTime = *patch.EndTime
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Notes != nil {
		a.Notes = *patch.Notes
	}
	if a.EndTime <= a.StartTime {
		return nil, apperrors.Validation("endTime %q must be after startTime %q", a.EndTime, a.StartTime)
	}

	if err := s.store.Update(ctx, a); err != nil {
		if !errors.Is(err, apperrors.ErrSlotTaken) {
			span.RecordError(err)
		}
		return nil, err
	}

	s.logger.Info("appointment updated", "id", a.ID, "date", a.Date, "start_time", a.StartTime, "status", a.Status)
	if s.publisher != nil {
		s.publisher.AppointmentUpdated(*a)
	}
	return a, nil
}

// Delete removes an appointment permanently and notifies subscribers.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "appointments.delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("calendar.appointment_id", id))

	if err := s.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			span.RecordError(err)
		}
		return err
	}

	s.logger.Info("appointment deleted", "id", id)
	if s.publisher != nil {
		s.publisher.AppointmentDeleted(id)
	}
	return nil
}
