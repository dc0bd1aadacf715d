package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

func render(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, body.Error
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("%w: token expired", domain.ErrUnauthenticated), http.StatusUnauthorized},
		{domain.ErrSessionRevoked, http.StatusUnauthorized},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{domain.ErrPatientNotFound, http.StatusNotFound},
		{fmt.Errorf("profile: %w", domain.ErrDoctorNotFound), http.StatusNotFound},
		{domain.ErrPrincipalExists, http.StatusConflict},
		{domain.ErrAppointmentConflict, http.StatusConflict},
		{domain.ErrAppointmentNotFound, http.StatusNotFound},
		{fmt.Errorf("update appointment: %w", domain.ErrInvalidTransition), http.StatusConflict},
		{domain.ErrValidation, http.StatusBadRequest},
	}

	for _, tc := range cases {
		if code, _ := render(t, tc.err); code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
	}
}

func TestHTTPErrorHandler_RevokedLooksUnauthenticated(t *testing.T) {
	_, msg := render(t, domain.ErrSessionRevoked)
	if msg != domain.ErrUnauthenticated.Error() {
		t.Fatalf("expected generic message, got %q", msg)
	}
}

func TestHTTPErrorHandler_ValidationDetail(t *testing.T) {
	code, msg := render(t, fmt.Errorf("%w: size must be an integer", domain.ErrValidation))
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if msg != "size must be an integer" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	code, msg := render(t, echo.NewHTTPError(http.StatusBadRequest, "invalid payload"))
	if code != http.StatusBadRequest || msg != "invalid payload" {
		t.Fatalf("unexpected %d %q", code, msg)
	}
}

func TestHTTPErrorHandler_UnexpectedErrorIsHidden(t *testing.T) {
	code, msg := render(t, errors.New("dial tcp 10.0.0.5:27017: connection refused"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if msg != "internal server error" {
		t.Fatalf("internal details leaked: %q", msg)
	}
}
