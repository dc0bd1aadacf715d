package domain

// Doctor is a member of the medical staff who can receive appointments.
type Doctor struct {
	ID             string `json:"id"`
	Username       string `json:"username,omitempty"`
	FullName       string `json:"full_name"`
	Specialization string `json:"specialization"`
	Department     string `json:"department,omitempty"`
	Email          string `json:"email,omitempty"`
}
