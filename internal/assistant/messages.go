// Package assistant is the Sofia-facing API: the booking webhook and the
// schedule briefings the voice assistant reads to patients. Every response
// carries a German, patient-appropriate message; machine-readable error
// envelopes stay on the UI endpoints.
package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/sofia-praxis/dental-calendar/internal/appointments"
	"github.com/sofia-praxis/dental-calendar/internal/availability"
	"github.com/sofia-praxis/dental-calendar/pkg/apperrors"
)

var germanWeekdays = [...]string{
	time.Sunday:    "Sonntag",
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
}

var germanMonths = [...]string{
	time.January:   "Januar",
	time.February:  "Februar",
	time.March:     "März",
	time.April:     "April",
	time.May:       "Mai",
	time.June:      "Juni",
	time.July:      "Juli",
	time.August:    "August",
	time.September: "September",
	time.October:   "Oktober",
	time.November:  "November",
	time.December:  "Dezember",
}

// FormatDate renders a civil date the way Sofia announces it:
// "Montag, 10. März 2025". Unparseable input is returned as-is.
func FormatDate(date string) string {
	t, err := availability.ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %d. %s %d",
		germanWeekdays[t.Weekday()], t.Day(), germanMonths[t.Month()], t.Year())
}

// DayName returns the German weekday name for a civil date.
func DayName(date string) string {
	t, err := availability.ParseDate(date)
	if err != nil {
		return date
	}
	return germanWeekdays[t.Weekday()]
}

// Patient-facing messages. One per error kind, per the API contract: the
// assistant never relays raw error strings.
const (
	msgNoAppointmentsToday    = "Heute sind keine Termine geplant."
	msgNoAppointmentsPatient  = "Sie haben aktuell keine anstehenden Termine bei uns."
	msgNoAppointmentsWeek     = "Diese Woche sind keine Termine geplant."
	msgNoAppointmentsUpcoming = "In den nächsten 30 Tagen sind keine Termine geplant."
	msgNoSlots                = "In den nächsten 30 Tagen sind leider alle Termine belegt. Bitte rufen Sie uns direkt an."
	msgWeekendClosed          = "Am Wochenende haben wir geschlossen. Bitte wählen Sie einen Wochentag."
	msgDateInPast             = "Dieses Datum liegt in der Vergangenheit. Bitte wählen Sie ein zukünftiges Datum."
	msgInvalidDate            = "Ungültiges Datumsformat. Bitte verwenden Sie YYYY-MM-DD."
	msgMissingBookingFields   = "Für die Buchung benötige ich Name, Datum und Uhrzeit."
	msgStorageDown            = "Unser Kalendersystem ist im Moment nicht erreichbar. Bitte versuchen Sie es gleich noch einmal."
	msgSlotTaken              = "Der gewünschte Termin ist bereits vergeben."
)

func bookedConfirmation(date, timeStr string) string {
	return fmt.Sprintf("Termin erfolgreich gebucht für %s um %s Uhr.", FormatDate(date), timeStr)
}

func slotTakenWithAlternative(alt *availability.Slot) string {
	if alt == nil {
		return msgSlotTaken + " " + msgNoSlots
	}
	return fmt.Sprintf("%s Der nächste freie Termin ist %s um %s Uhr.",
		msgSlotTaken, FormatDate(alt.Date), alt.Time)
}

func todayMessage(date string, list []appointments.Appointment) string {
	if len(list) == 0 {
		return msgNoAppointmentsToday
	}
	parts := make([]string, 0, len(list))
	for _, a := range list {
		parts = append(parts, fmt.Sprintf("um %s Uhr %s für %s", a.StartTime, a.PatientName, treatmentOr(a)))
	}
	return fmt.Sprintf("Heute, %s, haben wir %d Termine: %s.",
		FormatDate(date), len(list), strings.Join(parts, ", "))
}

func patientMessage(list []appointments.Appointment) string {
	if len(list) == 0 {
		return msgNoAppointmentsPatient
	}
	parts := make([]string, 0, len(list))
	for _, a := range list {
		parts = append(parts, fmt.Sprintf("%s um %s Uhr für %s", FormatDate(a.Date), a.StartTime, treatmentOr(a)))
	}
	return fmt.Sprintf("Sie haben %d anstehende Termine: %s.", len(list), strings.Join(parts, ", "))
}

func weekMessage(dayGroups map[string][]appointments.Appointment, order []string) string {
	if len(order) == 0 {
		return msgNoAppointmentsWeek
	}
	parts := make([]string, 0, len(order))
	for _, day := range order {
		parts = append(parts, fmt.Sprintf("%s %d Termine", day, len(dayGroups[day])))
	}
	return fmt.Sprintf("Diese Woche haben wir Termine an %d Tagen: %s.",
		len(order), strings.Join(parts, ", "))
}

func upcomingMessage(list []appointments.Appointment) string {
	if len(list) == 0 {
		return msgNoAppointmentsUpcoming
	}
	next := list[0]
	return fmt.Sprintf("In den nächsten 30 Tagen haben wir %d Termine. Der nächste Termin ist %s um %s Uhr mit %s.",
		len(list), FormatDate(next.Date), next.StartTime, next.PatientName)
}

func treatmentOr(a appointments.Appointment) string {
	if a.TreatmentType == "" {
		return "eine Behandlung"
	}
	return a.TreatmentType
}

// germanErrorMessage translates the taxonomy into a patient-appropriate
// sentence; every kind has exactly one phrasing.
func germanErrorMessage(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return msgMissingBookingFields
	case apperrors.KindSlotTaken:
		return msgSlotTaken
	case apperrors.KindNoSlots:
		return msgNoSlots
	default:
		return msgStorageDown
	}
}
