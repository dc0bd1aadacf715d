package messaging

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

// LogNotifier writes appointment events to the log. It stands in for a
// broker in development.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, e domain.AppointmentEvent) error {
	n.log.Info().
		Str("event", e.Type).
		Str("appointment_id", e.AppointmentID).
		Str("patient_id", e.PatientID).
		Str("doctor_id", e.DoctorID).
		Time("starts_at", e.StartsAt).
		Time("ends_at", e.EndsAt).
		Str("status", e.Status).
		Msg("appointment event")
	return nil
}
