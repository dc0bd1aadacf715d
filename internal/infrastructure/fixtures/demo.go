// Package fixtures holds the demo data seeded when DEMO_FIXTURES is set.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
	"github.com/hospitalmgmt/hospital-api/internal/core/service"
)

func birth(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Demo returns one admin, two doctors, two patients with logins and two
// patients without. Every login shares password.
func Demo(password string) []service.EnrollInput {
	return []service.EnrollInput{
		{
			Username: "admin",
			Password: password,
			Roles:    domain.NewRoleSet(domain.RoleAdmin),
		},
		{
			Username: "house",
			Password: password,
			Doctor: &domain.Doctor{
				FullName:       "Gregory House",
				Specialization: "Diagnostic Medicine",
				Department:     "Internal Medicine",
				Email:          "house@hospital.test",
			},
		},
		{
			Username: "grey",
			Password: password,
			Doctor: &domain.Doctor{
				FullName:       "Meredith Grey",
				Specialization: "General Surgery",
				Department:     "Surgery",
				Email:          "grey@hospital.test",
			},
		},
		{
			Username: "nina",
			Password: password,
			Patient: &domain.PatientRecord{
				FullName:   "Nina Alvarez",
				Email:      "nina@example.test",
				Phone:      "+1-555-0101",
				Gender:     "female",
				BloodGroup: "O+",
				BirthDate:  birth(1988, time.April, 12),
			},
		},
		{
			Username: "omar",
			Password: password,
			Patient: &domain.PatientRecord{
				FullName:   "Omar Khalil",
				Email:      "omar@example.test",
				Gender:     "male",
				BloodGroup: "A-",
				BirthDate:  birth(1975, time.November, 3),
			},
		},
	}
}

// UnlinkedPatients are records without a login, created straight in the
// patient store.
func UnlinkedPatients() []domain.PatientRecord {
	return []domain.PatientRecord{
		{FullName: "Li Wei", Email: "li.wei@example.test", Gender: "male", BirthDate: birth(2001, time.January, 30)},
		{FullName: "Sara Novak", Email: "sara.novak@example.test", Gender: "female", BloodGroup: "B+", BirthDate: birth(1996, time.July, 7)},
	}
}

// Seed enrolls the demo principals. Unlinked patients are only added on the
// run that created principals, so reseeding a persistent store adds nothing.
func Seed(ctx context.Context, enroller *service.EnrollmentService, patients ports.PatientStore, password string) (int, error) {
	created, err := enroller.EnrollAll(ctx, Demo(password))
	if err != nil {
		return created, fmt.Errorf("seed demo principals: %w", err)
	}
	if created == 0 {
		return 0, nil
	}
	for _, p := range UnlinkedPatients() {
		if _, err := patients.Create(ctx, &p); err != nil {
			return created, fmt.Errorf("seed patient %s: %w", p.FullName, err)
		}
		created++
	}
	return created, nil
}
