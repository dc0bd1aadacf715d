package domain

import (
	"fmt"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

// validTransitions lists the statuses each status may move to. Cancelled
// and completed appointments are final.
var validTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentCompleted, AppointmentCancelled},
}

// ParseAppointmentStatus maps a wire value onto a known status.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(s); st {
	case AppointmentScheduled, AppointmentCancelled, AppointmentCompleted:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown appointment status %q", ErrValidation, s)
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment books a patient with a doctor for [StartsAt, EndsAt).
type Appointment struct {
	ID        string
	PatientID string
	DoctorID  string
	StartsAt  time.Time
	EndsAt    time.Time
	Reason    string
	Status    AppointmentStatus
	CreatedAt time.Time
}

// Overlaps reports whether both appointments are scheduled and their time
// ranges intersect.
func (a Appointment) Overlaps(other Appointment) bool {
	if a.Status != AppointmentScheduled || other.Status != AppointmentScheduled {
		return false
	}
	return a.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(a.EndsAt)
}

// Appointment event types.
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentCompleted = "appointment.completed"
)

// EventTypeFor returns the event type announcing an appointment reaching
// status.
func EventTypeFor(status AppointmentStatus) string {
	switch status {
	case AppointmentCancelled:
		return EventAppointmentCancelled
	case AppointmentCompleted:
		return EventAppointmentCompleted
	default:
		return EventAppointmentCreated
	}
}

// AppointmentEvent announces a booking or a status change to downstream
// notifiers.
type AppointmentEvent struct {
	Type          string    `json:"type"`
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	DoctorID      string    `json:"doctor_id"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
