package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=64"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

type principalResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type sessionResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Principal principalResponse `json:"principal"`
}

type listPatientsQuery struct {
	Page int `query:"page" validate:"min=0"`
	Size int `query:"size"`
}

type patientSummaryResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Gender    string    `json:"gender,omitempty"`
	BirthDate time.Time `json:"birth_date"`
}

type patientPageResponse struct {
	Items      []patientSummaryResponse `json:"items"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	Size       int                      `json:"size"`
	TotalPages int                      `json:"total_pages"`
}

type patientResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username,omitempty"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	BloodGroup string    `json:"blood_group,omitempty"`
	BirthDate  time.Time `json:"birth_date"`
}

type doctorResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Specialization string `json:"specialization"`
	Department     string `json:"department,omitempty"`
}

type createAppointmentRequest struct {
	PatientID       string    `json:"patient_id"       validate:"omitempty,max=64"`
	DoctorID        string    `json:"doctor_id"        validate:"required,max=64"`
	StartsAt        time.Time `json:"starts_at"        validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,min=5,max=240"`
	Reason          string    `json:"reason"           validate:"max=500"`
}

type appointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}

type appointmentResponse struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	DoctorID  string    `json:"doctor_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
