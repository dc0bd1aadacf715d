package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
)

// EnrollInput describes a principal to create together with the optional
// patient or doctor profile linked to it by username.
type EnrollInput struct {
	Username string
	Password string
	Roles    domain.RoleSet
	Patient  *domain.PatientRecord
	Doctor   *domain.Doctor
}

// Enrollment is what Enroll created.
type Enrollment struct {
	Principal *domain.Principal
	Patient   *domain.PatientRecord
	Doctor    *domain.Doctor
}

// EnrollmentService onboards staff and patients.
type EnrollmentService struct {
	provisioner ports.Provisioner
	patients    ports.PatientStore
	doctors     ports.DoctorStore
	log         zerolog.Logger
}

func NewEnrollmentService(provisioner ports.Provisioner, patients ports.PatientStore, doctors ports.DoctorStore, log zerolog.Logger) *EnrollmentService {
	return &EnrollmentService{
		provisioner: provisioner,
		patients:    patients,
		doctors:     doctors,
		log:         log,
	}
}

// Enroll provisions the principal and then its profiles. A patient profile
// implies the PATIENT role and a doctor profile the DOCTOR role. The steps are
// not atomic: when a profile insert fails the principal is kept and the error
// names it.
func (s *EnrollmentService) Enroll(ctx context.Context, in EnrollInput) (*Enrollment, error) {
	username := strings.TrimSpace(in.Username)
	roles := domain.NewRoleSet(in.Roles...)
	if in.Patient != nil {
		if strings.TrimSpace(in.Patient.FullName) == "" {
			return nil, fmt.Errorf("%w: patient full name is required", domain.ErrValidation)
		}
		roles = domain.NewRoleSet(append(roles, domain.RolePatient)...)
	}
	if in.Doctor != nil {
		if strings.TrimSpace(in.Doctor.FullName) == "" {
			return nil, fmt.Errorf("%w: doctor full name is required", domain.ErrValidation)
		}
		roles = domain.NewRoleSet(append(roles, domain.RoleDoctor)...)
	}

	principal, err := s.provisioner.Provision(ctx, username, in.Password, roles)
	if err != nil {
		return nil, err
	}
	out := &Enrollment{Principal: principal}

	if in.Patient != nil {
		record := *in.Patient
		record.Username = principal.Username
		if record.CreatedAt.IsZero() {
			record.CreatedAt = principal.CreatedAt
		}
		if out.Patient, err = s.patients.Create(ctx, &record); err != nil {
			return out, fmt.Errorf("enroll %s: patient profile: %w", principal.Username, err)
		}
	}
	if in.Doctor != nil {
		doctor := *in.Doctor
		doctor.Username = principal.Username
		if out.Doctor, err = s.doctors.Create(ctx, &doctor); err != nil {
			return out, fmt.Errorf("enroll %s: doctor profile: %w", principal.Username, err)
		}
	}

	s.log.Info().
		Str("username", principal.Username).
		Strs("roles", principal.Roles.Strings()).
		Bool("patient", out.Patient != nil).
		Bool("doctor", out.Doctor != nil).
		Msg("principal enrolled")
	return out, nil
}

// EnrollAll enrolls every input, skipping principals that already exist so
// repeated runs against a persistent store are harmless. It returns how many
// were created.
func (s *EnrollmentService) EnrollAll(ctx context.Context, inputs []EnrollInput) (int, error) {
	created := 0
	for _, in := range inputs {
		if _, err := s.Enroll(ctx, in); err != nil {
			if errors.Is(err, domain.ErrPrincipalExists) {
				s.log.Debug().Str("username", in.Username).Msg("principal exists, skipped")
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
