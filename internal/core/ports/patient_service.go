package ports

import (
	"context"
	"time"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

type PatientService interface {
	List(ctx context.Context, req domain.PageRequest) (*domain.Page[domain.PatientSummary], error)
	// Profile returns the caller's own record. Admins may name any patientID.
	Profile(ctx context.Context, caller *domain.Principal, patientID string) (*domain.PatientRecord, error)
	// Appointments lists the bookings of the patient Profile would resolve.
	Appointments(ctx context.Context, caller *domain.Principal, patientID string) ([]domain.Appointment, error)
}

type DoctorService interface {
	List(ctx context.Context) ([]domain.Doctor, error)
	// Appointments lists the caller's bookings as a doctor. Admins may name any
	// doctorID.
	Appointments(ctx context.Context, caller *domain.Principal, doctorID string) ([]domain.Appointment, error)
}

// CreateAppointmentInput carries a booking request. PatientID is only honoured
// for admins; patients always book for themselves.
type CreateAppointmentInput struct {
	PatientID string
	DoctorID  string
	StartsAt  time.Time
	Duration  time.Duration
	Reason    string
}

type AppointmentService interface {
	Create(ctx context.Context, caller *domain.Principal, in CreateAppointmentInput) (*domain.Appointment, error)
	// UpdateStatus completes or cancels an appointment. Patients may only
	// cancel their own bookings; doctors may complete or cancel theirs.
	UpdateStatus(ctx context.Context, caller *domain.Principal, id string, next domain.AppointmentStatus) (*domain.Appointment, error)
}

// AppointmentNotifier delivers booking and status change announcements.
type AppointmentNotifier interface {
	Notify(ctx context.Context, event domain.AppointmentEvent) error
}

// AppointmentDispatcher hands events to notifiers off the request path.
type AppointmentDispatcher interface {
	Enqueue(ctx context.Context, event domain.AppointmentEvent) error
}
