package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospitalmgmt/hospital-api/internal/api/metrics"
	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
)

// PatientHandler serves the patient listing, patient profiles and the
// patient side of appointments.
type PatientHandler struct {
	patients     ports.PatientService
	appointments ports.AppointmentService
}

func NewPatientHandler(patients ports.PatientService, appointments ports.AppointmentService) *PatientHandler {
	return &PatientHandler{patients: patients, appointments: appointments}
}

// List returns one page of patients ordered by ID.
//
// @Summary      List patients
// @Tags         admin
// @Produce      json
// @Param        page  query     int  false  "Zero-based page index"  default(0)
// @Param        size  query     int  false  "Page size, capped at 100"  default(10)
// @Success      200   {object}  patientPageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Security     BearerAuth
// @Router       /admin/patients [get]
func (h *PatientHandler) List(c echo.Context) error {
	var q listPatientsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return fmt.Errorf("%w: page and size must be integers", domain.ErrValidation)
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	page, err := h.patients.List(c.Request().Context(), domain.PageRequest{Page: q.Page, Size: q.Size})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPatientPageResponse(page))
}

// Profile returns the caller's patient record.
//
// @Summary      Patient profile
// @Tags         patients
// @Produce      json
// @Param        patient_id  query     string  false  "Patient ID (admins only)"
// @Success      200         {object}  patientResponse
// @Failure      401         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Security     BearerAuth
// @Router       /patients/profile [get]
func (h *PatientHandler) Profile(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}

	record, err := h.patients.Profile(c.Request().Context(), p, c.QueryParam("patient_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPatientResponse(record))
}

// Appointments lists the caller's bookings as a patient.
//
// @Summary      Patient appointments
// @Tags         patients
// @Produce      json
// @Param        patient_id  query     string  false  "Patient ID (admins only)"
// @Success      200         {array}   appointmentResponse
// @Failure      401         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Security     BearerAuth
// @Router       /patients/appointments [get]
func (h *PatientHandler) Appointments(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}

	appts, err := h.patients.Appointments(c.Request().Context(), p, c.QueryParam("patient_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAppointmentResponses(appts))
}

// CreateAppointment books the caller with a doctor. Admins book on behalf of
// the patient named in patient_id.
//
// @Summary      Create appointment
// @Tags         patients
// @Accept       json
// @Produce      json
// @Param        body  body      createAppointmentRequest  true  "Booking"
// @Success      201   {object}  appointmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Security     BearerAuth
// @Router       /patients/appointments [post]
func (h *PatientHandler) CreateAppointment(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}

	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	appt, err := h.appointments.Create(c.Request().Context(), p, toAppointmentInput(req))
	if err != nil {
		return err
	}
	metrics.AppointmentsCreatedTotal.Inc()

	c.Response().Header().Set(echo.HeaderLocation, "/patients/appointments")
	return c.JSON(http.StatusCreated, toAppointmentResponse(appt))
}

// CancelAppointment cancels one of the caller's scheduled appointments.
//
// @Summary      Cancel appointment
// @Tags         patients
// @Produce      json
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  appointmentResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /patients/appointments/{id}/cancel [post]
func (h *PatientHandler) CancelAppointment(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}

	appt, err := h.appointments.UpdateStatus(c.Request().Context(), p, c.Param("id"), domain.AppointmentCancelled)
	if err != nil {
		return err
	}
	metrics.AppointmentStatusChangesTotal.WithLabelValues(string(appt.Status)).Inc()
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}
