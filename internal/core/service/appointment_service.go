package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
)

const (
	DefaultAppointmentDuration = 30 * time.Minute
	MinAppointmentDuration     = 5 * time.Minute
	MaxAppointmentDuration     = 240 * time.Minute
)

type appointmentService struct {
	patients     ports.PatientStore
	doctors      ports.DoctorStore
	appointments ports.AppointmentStore
	dispatcher   ports.AppointmentDispatcher
	log          zerolog.Logger
	now          func() time.Time

	// mu serialises the overlap check with the insert within this process.
	mu sync.Mutex
}

// NewAppointmentService returns an AppointmentService implementation.
// dispatcher may be nil when no notifications are wanted.
func NewAppointmentService(
	patients ports.PatientStore,
	doctors ports.DoctorStore,
	appointments ports.AppointmentStore,
	dispatcher ports.AppointmentDispatcher,
	log zerolog.Logger,
) ports.AppointmentService {
	return &appointmentService{
		patients:     patients,
		doctors:      doctors,
		appointments: appointments,
		dispatcher:   dispatcher,
		log:          log,
		now:          time.Now,
	}
}

// Create books a scheduled appointment and announces it to the dispatcher.
func (s *appointmentService) Create(ctx context.Context, caller *domain.Principal, in ports.CreateAppointmentInput) (*domain.Appointment, error) {
	patient, err := resolvePatient(ctx, s.patients, caller, in.PatientID)
	if err != nil {
		return nil, err
	}

	if in.DoctorID == "" {
		return nil, fmt.Errorf("%w: doctor_id is required", domain.ErrValidation)
	}
	if in.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: starts_at is required", domain.ErrValidation)
	}
	duration := in.Duration
	if duration == 0 {
		duration = DefaultAppointmentDuration
	}
	if duration < MinAppointmentDuration || duration > MaxAppointmentDuration {
		return nil, fmt.Errorf("%w: duration must be between %s and %s",
			domain.ErrValidation, MinAppointmentDuration, MaxAppointmentDuration)
	}

	doctor, err := s.doctors.FindByID(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}

	appt := &domain.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartsAt:  in.StartsAt.UTC(),
		EndsAt:    in.StartsAt.UTC().Add(duration),
		Reason:    strings.TrimSpace(in.Reason),
		Status:    domain.AppointmentScheduled,
		CreatedAt: s.now().UTC(),
	}

	created, err := s.book(ctx, appt)
	if err != nil {
		return nil, err
	}

	s.announce(ctx, created)
	return created, nil
}

func (s *appointmentService) book(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.appointments.ListByDoctor(ctx, appt.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	for _, other := range existing {
		if appt.Overlaps(other) {
			return nil, fmt.Errorf("%w (appointment %s)", domain.ErrAppointmentConflict, other.ID)
		}
	}

	created, err := s.appointments.Create(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return created, nil
}

// UpdateStatus moves a scheduled appointment to completed or cancelled.
// Appointments the caller is not party to are reported as not found.
func (s *appointmentService) UpdateStatus(ctx context.Context, caller *domain.Principal, id string, next domain.AppointmentStatus) (*domain.Appointment, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if next != domain.AppointmentCompleted && next != domain.AppointmentCancelled {
		return nil, fmt.Errorf("%w: status must be completed or cancelled", domain.ErrValidation)
	}

	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeChange(ctx, caller, appt, next); err != nil {
		return nil, err
	}

	if !appt.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, appt.Status, next)
	}
	if err := s.appointments.UpdateStatus(ctx, appt.ID, appt.Status, next); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	appt.Status = next

	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("status", string(next)).
		Str("by", caller.Username).
		Msg("appointment status changed")

	s.announce(ctx, appt)
	return appt, nil
}

func (s *appointmentService) authorizeChange(ctx context.Context, caller *domain.Principal, appt *domain.Appointment, next domain.AppointmentStatus) error {
	if caller.HasRole(domain.RoleAdmin) {
		return nil
	}

	if caller.HasRole(domain.RoleDoctor) {
		doctor, err := s.doctors.FindByUsername(ctx, caller.Username)
		switch {
		case err == nil && doctor.ID == appt.DoctorID:
			return nil
		case err != nil && !errors.Is(err, domain.ErrDoctorNotFound):
			return err
		}
	}

	if caller.HasRole(domain.RolePatient) {
		patient, err := s.patients.FindByUsername(ctx, caller.Username)
		switch {
		case err == nil && patient.ID == appt.PatientID:
			if next != domain.AppointmentCancelled {
				return domain.ErrForbidden
			}
			return nil
		case err != nil && !errors.Is(err, domain.ErrPatientNotFound):
			return err
		}
	}

	return domain.ErrAppointmentNotFound
}

func (s *appointmentService) announce(ctx context.Context, a *domain.Appointment) {
	if s.dispatcher == nil {
		return
	}
	event := domain.AppointmentEvent{
		Type:          domain.EventTypeFor(a.Status),
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		StartsAt:      a.StartsAt,
		EndsAt:        a.EndsAt,
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
	}
	if err := s.dispatcher.Enqueue(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("appointment_id", a.ID).Msg("appointment notification not queued")
	}
}
