package domain

import "errors"

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSessionRevoked      = errors.New("session revoked")
	ErrForbidden           = errors.New("access forbidden")
	ErrTooManyAttempts     = errors.New("too many login attempts")
	ErrValidation          = errors.New("validation failed")
	ErrPrincipalNotFound   = errors.New("principal not found")
	ErrPrincipalExists     = errors.New("principal already exists")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentConflict = errors.New("appointment overlaps an existing booking")
	ErrInvalidTransition   = errors.New("invalid appointment status transition")
)
