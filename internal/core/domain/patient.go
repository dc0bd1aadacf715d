package domain

import "time"

// PatientRecord is a stored patient. Username links the record to the
// principal that owns it and may be empty for patients without a login.
type PatientRecord struct {
	ID         string    `json:"id"`
	Username   string    `json:"username,omitempty"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	BloodGroup string    `json:"blood_group,omitempty"`
	BirthDate  time.Time `json:"birth_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// PatientSummary is the projection returned by patient listings.
type PatientSummary struct {
	ID        string
	FullName  string
	Email     string
	Gender    string
	BirthDate time.Time
}

// Summary projects the record for listings.
func (p PatientRecord) Summary() PatientSummary {
	return PatientSummary{
		ID:        p.ID,
		FullName:  p.FullName,
		Email:     p.Email,
		Gender:    p.Gender,
		BirthDate: p.BirthDate,
	}
}
