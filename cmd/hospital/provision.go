package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hospitalmgmt/hospital-api/internal/core/credential"
	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/service"
	"github.com/hospitalmgmt/hospital-api/internal/infrastructure/config"
)

type provisionFlags struct {
	username string
	password string
	roles    []string

	email string

	patientName string
	gender      string
	bloodGroup  string
	birthDate   string

	doctorName     string
	specialization string
	department     string
}

func newProvisionCmd() *cobra.Command {
	var f provisionFlags
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create a principal with roles and an optional patient or doctor profile",
		Example: "  hospital provision --username admin --password s3cret --role admin\n" +
			"  hospital provision --username nina --password s3cret --patient-name 'Nina Alvarez' --birth-date 1988-04-12",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			if cfg.Store.Driver == config.StoreMemory {
				log.Warn().Msg("STORE_DRIVER=memory: the principal is lost when this command exits")
			}

			b, err := openStores(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = b.Close(ctx) }()

			encoder, err := credential.NewBcryptEncoder(cfg.Session.BcryptCost)
			if err != nil {
				return err
			}
			// Provisioning never issues sessions; the secret only satisfies
			// the constructor.
			auth, err := service.NewAuthService(b.principals, encoder, nil, nil,
				service.AuthConfig{Secret: sessionSecret(cfg, log)}, log)
			if err != nil {
				return err
			}

			out, err := service.NewEnrollmentService(auth, b.patients, b.doctors, log).Enroll(ctx, in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "principal %s (%s) roles=%v\n", out.Principal.Username, out.Principal.ID, out.Principal.Roles.Strings())
			if out.Patient != nil {
				fmt.Fprintf(w, "patient   %s\n", out.Patient.ID)
			}
			if out.Doctor != nil {
				fmt.Fprintf(w, "doctor    %s\n", out.Doctor.ID)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.username, "username", "", "login name (required)")
	fl.StringVar(&f.password, "password", "", "plaintext password (required)")
	fl.StringSliceVar(&f.roles, "role", nil, "role to grant: admin, doctor or patient (repeatable)")
	fl.StringVar(&f.email, "email", "", "contact email stored on the profile")
	fl.StringVar(&f.patientName, "patient-name", "", "create a linked patient record with this full name")
	fl.StringVar(&f.gender, "gender", "", "patient gender")
	fl.StringVar(&f.bloodGroup, "blood-group", "", "patient blood group")
	fl.StringVar(&f.birthDate, "birth-date", "", "patient birth date, YYYY-MM-DD")
	fl.StringVar(&f.doctorName, "doctor-name", "", "create a linked doctor record with this full name")
	fl.StringVar(&f.specialization, "specialization", "", "doctor specialization")
	fl.StringVar(&f.department, "department", "", "doctor department")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// input validates the flags and builds the enrollment request.
func (f provisionFlags) input() (service.EnrollInput, error) {
	roles, err := domain.ParseRoleSet(f.roles)
	if err != nil {
		return service.EnrollInput{}, err
	}
	in := service.EnrollInput{
		Username: f.username,
		Password: f.password,
		Roles:    roles,
	}

	if f.patientName != "" {
		p := &domain.PatientRecord{
			FullName:   f.patientName,
			Email:      f.email,
			Gender:     f.gender,
			BloodGroup: f.bloodGroup,
		}
		if f.birthDate != "" {
			born, err := time.Parse(time.DateOnly, f.birthDate)
			if err != nil {
				return service.EnrollInput{}, fmt.Errorf("%w: birth-date must be YYYY-MM-DD", domain.ErrValidation)
			}
			p.BirthDate = born
		}
		in.Patient = p
	}
	if f.doctorName != "" {
		in.Doctor = &domain.Doctor{
			FullName:       f.doctorName,
			Specialization: f.specialization,
			Department:     f.department,
			Email:          f.email,
		}
	}
	return in, nil
}
