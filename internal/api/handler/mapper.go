package handler

import (
	"time"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
)

// --- Request → Service input ---

func toAppointmentInput(req createAppointmentRequest) ports.CreateAppointmentInput {
	return ports.CreateAppointmentInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		StartsAt:  req.StartsAt,
		Duration:  time.Duration(req.DurationMinutes) * time.Minute,
		Reason:    req.Reason,
	}
}

// --- Service result → HTTP response ---

func toSessionResponse(s *ports.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC(),
		Principal: toPrincipalResponse(s.Principal),
	}
}

func toPrincipalResponse(p *domain.Principal) principalResponse {
	roles := p.Roles.Strings()
	if roles == nil {
		roles = []string{}
	}
	return principalResponse{ID: p.ID, Username: p.Username, Roles: roles}
}

func toPatientPageResponse(page *domain.Page[domain.PatientSummary]) patientPageResponse {
	items := make([]patientSummaryResponse, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, patientSummaryResponse{
			ID:        s.ID,
			FullName:  s.FullName,
			Email:     s.Email,
			Gender:    s.Gender,
			BirthDate: s.BirthDate.UTC(),
		})
	}
	return patientPageResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		Size:       page.Size,
		TotalPages: page.TotalPages,
	}
}

func toPatientResponse(p *domain.PatientRecord) patientResponse {
	return patientResponse{
		ID:         p.ID,
		Username:   p.Username,
		FullName:   p.FullName,
		Email:      p.Email,
		Phone:      p.Phone,
		Gender:     p.Gender,
		BloodGroup: p.BloodGroup,
		BirthDate:  p.BirthDate.UTC(),
	}
}

func toDoctorResponses(doctors []domain.Doctor) []doctorResponse {
	out := make([]doctorResponse, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, doctorResponse{
			ID:             d.ID,
			FullName:       d.FullName,
			Specialization: d.Specialization,
			Department:     d.Department,
		})
	}
	return out
}

func toAppointmentResponse(a *domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		StartsAt:  a.StartsAt.UTC(),
		EndsAt:    a.EndsAt.UTC(),
		Reason:    a.Reason,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.UTC(),
	}
}

func toAppointmentResponses(appts []domain.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}
