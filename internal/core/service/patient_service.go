package service

import (
	"context"
	"fmt"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
)

type patientService struct {
	patients     ports.PatientStore
	appointments ports.AppointmentStore
}

// NewPatientService returns a PatientService implementation.
func NewPatientService(patients ports.PatientStore, appointments ports.AppointmentStore) ports.PatientService {
	return &patientService{patients: patients, appointments: appointments}
}

// List returns one page of patient summaries ordered by ID.
func (s *patientService) List(ctx context.Context, req domain.PageRequest) (*domain.Page[domain.PatientSummary], error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	records, total, err := s.patients.List(ctx, req.Page, req.Size)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	items := make([]domain.PatientSummary, 0, len(records))
	for _, r := range records {
		items = append(items, r.Summary())
	}
	return domain.NewPage(items, total, req), nil
}

func (s *patientService) Profile(ctx context.Context, caller *domain.Principal, patientID string) (*domain.PatientRecord, error) {
	return resolvePatient(ctx, s.patients, caller, patientID)
}

func (s *patientService) Appointments(ctx context.Context, caller *domain.Principal, patientID string) ([]domain.Appointment, error) {
	patient, err := resolvePatient(ctx, s.patients, caller, patientID)
	if err != nil {
		return nil, err
	}

	list, err := s.appointments.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if list == nil {
		list = []domain.Appointment{}
	}
	return list, nil
}

// resolvePatient finds the patient record a caller acts for. Admins name the
// patient explicitly unless they are patients themselves; patients always
// resolve to their own record and may only name it.
func resolvePatient(ctx context.Context, patients ports.PatientStore, caller *domain.Principal, patientID string) (*domain.PatientRecord, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}

	if caller.HasRole(domain.RoleAdmin) && patientID != "" {
		return patients.FindByID(ctx, patientID)
	}

	if !caller.HasRole(domain.RolePatient) {
		if caller.HasRole(domain.RoleAdmin) {
			return nil, fmt.Errorf("%w: patient_id is required", domain.ErrValidation)
		}
		return nil, domain.ErrForbidden
	}

	own, err := patients.FindByUsername(ctx, caller.Username)
	if err != nil {
		return nil, err
	}
	if patientID != "" && patientID != own.ID {
		return nil, domain.ErrForbidden
	}
	return own, nil
}
