// Package demo seeds the calendar with sample appointments so a fresh
// install has something to show. Mounted only when DEMO_SEED_ENABLED is set;
// never in production.
package demo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sofia-praxis/dental-calendar/internal/appointments"
	"github.com/sofia-praxis/dental-calendar/internal/availability"
	"github.com/sofia-praxis/dental-calendar/pkg/apperrors"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

// Seeder inserts sample appointments through the booking service, so the
// same collision rules apply and live viewers see the events.
type Seeder struct {
	svc    *appointments.Service
	logger *logging.Logger
	now    func() time.Time
}

// NewSeeder creates a demo seeder.
func NewSeeder(svc *appointments.Service, logger *logging.Logger) *Seeder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Seeder{svc: svc, logger: logger, now: time.Now}
}

// WithClock overrides the clock; used by tests.
func (s *Seeder) WithClock(now func() time.Time) *Seeder {
	s.now = now
	return s
}

type sample struct {
	name      string
	phone     string
	dayOffset int
	start     string
	end       string
	treatment string
}

var samples = []sample{
	{"Emma Johnson", "+15551234567", 0, "10:00", "10:30", "Check-up"},
	{"James Wilson", "+15552345678", 0, "11:00", "11:45", "Filling"},
	{"Sarah Brown", "+15553456789", 1, "14:00", "15:00", "Cleaning"},
	{"Michael Davis", "+15554567890", 1, "15:30", "16:00", "Consultation"},
	{"Emily Thompson", "+15555678901", 2, "09:00", "10:00", "Root Canal"},
}

// Seed inserts the sample set relative to today. Occupied slots are skipped
// so repeated seeding stays idempotent.
func (s *Seeder) Seed(ctx context.Context) (created, skipped int, err error) {
	base := s.now()
	for _, smp := range samples {
		date := availability.DateString(base.AddDate(0, 0, smp.dayOffset))
		_, cerr := s.svc.Create(ctx, appointments.CreateInput{
			PatientName:   smp.name,
			Phone:         smp.phone,
			Date:          date,
			StartTime:     smp.start,
			EndTime:       smp.end,
			TreatmentType: smp.treatment,
			Notes:         "Demo-Datensatz",
		})
		if cerr != nil {
			if errors.Is(cerr, apperrors.ErrSlotTaken) {
				skipped++
				continue
			}
			return created, skipped, cerr
		}
		created++
	}
	s.logger.Info("demo data seeded", "created", created, "skipped", skipped)
	return created, skipped, nil
}

// Routes exposes the seeder over HTTP.
func (s *Seeder) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/seed", s.handleSeed)
	return r
}

func (s *Seeder) handleSeed(w http.ResponseWriter, r *http.Request) {
	created, skipped, err := s.Seed(r.Context())
	if err != nil {
		s.logger.Error("demo seeding failed", "error", err)
		appointments.WriteError(w, err)
		return
	}
	appointments.WriteJSON(w, http.StatusOK, map[string]int{
		"created": created,
		"skipped": skipped,
	})
}
