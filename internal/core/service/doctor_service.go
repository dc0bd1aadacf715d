package service

import (
	"context"
	"fmt"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
)

type doctorService struct {
	doctors      ports.DoctorStore
	appointments ports.AppointmentStore
}

// NewDoctorService returns a DoctorService implementation.
func NewDoctorService(doctors ports.DoctorStore, appointments ports.AppointmentStore) ports.DoctorService {
	return &doctorService{doctors: doctors, appointments: appointments}
}

func (s *doctorService) List(ctx context.Context) ([]domain.Doctor, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	if doctors == nil {
		doctors = []domain.Doctor{}
	}
	return doctors, nil
}

// Appointments lists the bookings of the caller's doctor record, or of
// doctorID when the caller is an admin.
func (s *doctorService) Appointments(ctx context.Context, caller *domain.Principal, doctorID string) ([]domain.Appointment, error) {
	doctor, err := s.resolve(ctx, caller, doctorID)
	if err != nil {
		return nil, err
	}

	list, err := s.appointments.ListByDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if list == nil {
		list = []domain.Appointment{}
	}
	return list, nil
}

func (s *doctorService) resolve(ctx context.Context, caller *domain.Principal, doctorID string) (*domain.Doctor, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}

	if caller.HasRole(domain.RoleAdmin) && doctorID != "" {
		return s.doctors.FindByID(ctx, doctorID)
	}

	if !caller.HasRole(domain.RoleDoctor) {
		if caller.HasRole(domain.RoleAdmin) {
			return nil, fmt.Errorf("%w: doctor_id is required", domain.ErrValidation)
		}
		return nil, domain.ErrForbidden
	}

	own, err := s.doctors.FindByUsername(ctx, caller.Username)
	if err != nil {
		return nil, err
	}
	if doctorID != "" && doctorID != own.ID {
		return nil, domain.ErrForbidden
	}
	return own, nil
}
