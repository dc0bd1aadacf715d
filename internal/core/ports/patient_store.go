package ports

import (
	"context"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

// PatientStore persists patient records.
type PatientStore interface {
	// List returns the records of a zero-based page ordered by ID, and the
	// total number of records. A page past the end yields an empty slice.
	List(ctx context.Context, page, size int) ([]domain.PatientRecord, int64, error)
	FindByID(ctx context.Context, id string) (*domain.PatientRecord, error)
	FindByUsername(ctx context.Context, username string) (*domain.PatientRecord, error)
	Create(ctx context.Context, p *domain.PatientRecord) (*domain.PatientRecord, error)
}

// DoctorStore persists the doctor directory.
type DoctorStore interface {
	List(ctx context.Context) ([]domain.Doctor, error)
	FindByID(ctx context.Context, id string) (*domain.Doctor, error)
	FindByUsername(ctx context.Context, username string) (*domain.Doctor, error)
	Create(ctx context.Context, d *domain.Doctor) (*domain.Doctor, error)
}

// AppointmentStore persists bookings.
type AppointmentStore interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	// UpdateStatus moves the appointment from one status to another. It fails
	// with ErrInvalidTransition when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) error
	// ListByDoctor returns the doctor's appointments ordered by start time.
	ListByDoctor(ctx context.Context, doctorID string) ([]domain.Appointment, error)
	// ListByPatient returns the patient's appointments ordered by start time.
	ListByPatient(ctx context.Context, patientID string) ([]domain.Appointment, error)
}
