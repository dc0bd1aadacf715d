package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospitalmgmt/hospital-api/internal/api/metrics"
	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
)

type DoctorHandler struct {
	doctors      ports.DoctorService
	appointments ports.AppointmentService
}

func NewDoctorHandler(doctors ports.DoctorService, appointments ports.AppointmentService) *DoctorHandler {
	return &DoctorHandler{doctors: doctors, appointments: appointments}
}

// List returns every doctor. It is public.
//
// @Summary      List doctors
// @Tags         public
// @Produce      json
// @Success      200  {array}  doctorResponse
// @Router       /public/doctors [get]
func (h *DoctorHandler) List(c echo.Context) error {
	doctors, err := h.doctors.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDoctorResponses(doctors))
}

// Appointments lists the caller's bookings as a doctor.
//
// @Summary      Doctor appointments
// @Tags         doctors
// @Produce      json
// @Param        doctor_id  query     string  false  "Doctor ID (admins only)"
// @Success      200        {array}   appointmentResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Security     BearerAuth
// @Router       /doctors/appointments [get]
func (h *DoctorHandler) Appointments(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}

	appts, err := h.doctors.Appointments(c.Request().Context(), p, c.QueryParam("doctor_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAppointmentResponses(appts))
}

// UpdateAppointmentStatus completes or cancels one of the caller's
// appointments.
//
// @Summary      Update appointment status
// @Tags         doctors
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Appointment ID"
// @Param        body  body      appointmentStatusRequest  true  "New status"
// @Success      200   {object}  appointmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Security     BearerAuth
// @Router       /doctors/appointments/{id}/status [post]
func (h *DoctorHandler) UpdateAppointmentStatus(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}

	var req appointmentStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	appt, err := h.appointments.UpdateStatus(c.Request().Context(), p, c.Param("id"), domain.AppointmentStatus(req.Status))
	if err != nil {
		return err
	}
	metrics.AppointmentStatusChangesTotal.WithLabelValues(string(appt.Status)).Inc()
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}
