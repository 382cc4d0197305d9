// Package appointments implements the appointment store: one durable table,
// CRUD with an atomic slot-collision check, and live event emission.
package appointments

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sofia-praxis/dental-calendar/pkg/apperrors"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// DefaultDurationMinutes is applied when no end time is given.
const DefaultDurationMinutes = 30

// DefaultTreatment labels appointments without an explicit treatment type.
const DefaultTreatment = "Beratung"

// Appointment is one calendar entry. Date is a local civil date
// (YYYY-MM-DD); StartTime/EndTime are local clock times (HH:MM) forming the
// half-open interval [start, end).
type Appointment struct {
	ID            int64     `json:"id"`
	PatientName   string    `json:"patientName"`
	Phone         string    `json:"phone,omitempty"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	TreatmentType string    `json:"treatmentType,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateInput is the caller-supplied portion of a new appointment.
type CreateInput struct {
	PatientName   string `json:"patientName"`
	Phone         string `json:"phone"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	TreatmentType string `json:"treatmentType"`
	Notes         string `json:"notes"`
}

// UpdatePatch carries the fields an update may change. Nil means "leave
// unchanged"; reschedules set Date/StartTime/EndTime, status changes set
// Status.
type UpdatePatch struct {
	Date      *string `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Status    *Status `json:"status"`
	Notes     *string `json:"notes"`
}

// Filter narrows a listing. Zero values mean "no constraint".
type Filter struct {
	Date     string
	Phone    string
	FromDate string // inclusive lower bound on date
}

var timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidateDate checks the YYYY-MM-DD civil date format.
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return apperrors.Validation("invalid date %q, expected YYYY-MM-DD", date)
	}
	return nil
}

// ValidateTime checks the HH:MM clock time format.
func ValidateTime(hhmm string) error {
	if !timeRe.MatchString(hhmm) {
		return apperrors.Validation("invalid time %q, expected HH:MM", hhmm)
	}
	return nil
}

func validStatus(s Status) bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// AddMinutes shifts an HH:MM clock time forward. The result stays on the
// same civil day for every value the business-hours grid can produce.
func AddMinutes(hhmm string, minutes int) (string, error) {
	if err := ValidateTime(hhmm); err != nil {
		return "", err
	}
	parts := strings.SplitN(hhmm, ":", 2)
	var h, m int
	fmt.Sscanf(parts[0], "%d", &h)
	fmt.Sscanf(parts[1], "%d", &m)
	total := h*60 + m + minutes
	return fmt.Sprintf("%02d:%02d", (total/60)%24, total%60), nil
}

// NormalizePhone strips everything except digits and a leading plus, the
// same canonical form used for patient lookups.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks required fields and formats before any storage access.
func (in *CreateInput) Validate() error {
	if strings.TrimSpace(in.PatientName) == "" {
		return apperrors.Validation("patientName is required")
	}
	if in.Date == "" {
		return apperrors.Validation("date is required")
	}
	if err := ValidateDate(in.Date); err != nil {
		return err
	}
	if in.StartTime == "" {
		return apperrors.Validation("startTime is required")
	}
	if err := ValidateTime(in.StartTime); err != nil {
		return err
	}
	if in.EndTime != "" {
		if err := ValidateTime(in.EndTime); err != nil {
			return err
		}
		if in.EndTime <= in.StartTime {
			return apperrors.Validation("endTime %q must be after startTime %q", in.EndTime, in.StartTime)
		}
	}
	return nil
}

// Validate rejects malformed patches before touching storage.
func (p *UpdatePatch) Validate() error {
	if p.Date == nil && p.StartTime == nil && p.EndTime == nil && p.Status == nil && p.Notes == nil {
		return apperrors.Validation("update patch is empty")
	}
	if p.Date != nil {
		if err := ValidateDate(*p.Date); err != nil {
			return err
		}
	}
	if p.StartTime != nil {
		if err := ValidateTime(*p.StartTime); err != nil {
			return err
		}
	}
	if p.EndTime != nil {
		if err := ValidateTime(*p.EndTime); err != nil {
			return err
		}
	}
	if p.Status != nil && !validStatus(*p.Status) {
		return apperrors.Validation("invalid status %q", string(*p.Status))
	}
	return nil
}
