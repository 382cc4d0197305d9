// Package events pushes calendar mutations to connected viewers so every
// open calendar stays in sync. Clients treat their local view as a cache:
// a push is an invitation to refetch, never the authoritative state.
package events

import "github.com/sofia-praxis/dental-calendar/internal/appointments"

const (
	TypeAppointmentCreated = "appointmentCreated"
	TypeAppointmentUpdated = "appointmentUpdated"
	TypeAppointmentDeleted = "appointmentDeleted"
)

type AppointmentCreatedV1 struct {
	Type        string                   `json:"type"`
	Appointment appointments.Appointment `json:"appointment"`
}

type AppointmentUpdatedV1 struct {
	Type        string                   `json:"type"`
	Appointment appointments.Appointment `json:"appointment"`
}

// AppointmentDeletedV1 carries only the id; the row is gone.
type AppointmentDeletedV1 struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}
