package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/hospitalmgmt/hospital-api/docs"
	"github.com/hospitalmgmt/hospital-api/internal/api/handler"
	"github.com/hospitalmgmt/hospital-api/internal/api/middleware"
	"github.com/hospitalmgmt/hospital-api/internal/core/access"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
)

// Dependencies carries everything NewRouter wires into routes.
type Dependencies struct {
	Auth         ports.AuthService
	Patients     ports.PatientService
	Doctors      ports.DoctorService
	Appointments ports.AppointmentService
	// Policy defaults to access.DefaultPolicy.
	Policy *access.Policy
	// Checks are the readiness checks served on /health/ready.
	Checks map[string]handler.Check
	Cookie handler.CookieConfig
	Log    zerolog.Logger

	// CORSOrigins enables CORS for the listed origins.
	CORSOrigins []string
	// RequestTimeout bounds each request's context. Zero disables it.
	RequestTimeout time.Duration
	// MetricsRegisterer enables HTTP request metrics when non-nil.
	MetricsRegisterer prometheus.Registerer
	// MetricsGatherer backs /metrics; nil serves the default registry.
	MetricsGatherer prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	policy := deps.Policy
	if policy == nil {
		policy = access.DefaultPolicy()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	if len(deps.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
			AllowCredentials: true,
		}))
	}
	if deps.RequestTimeout > 0 {
		e.Use(echomiddleware.ContextTimeoutWithConfig(echomiddleware.ContextTimeoutConfig{
			Timeout: deps.RequestTimeout,
		}))
	}
	if deps.MetricsRegisterer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "hospital",
			Registerer: deps.MetricsRegisterer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
	}
	e.Use(middleware.Access(middleware.AccessConfig{
		Policy:        policy,
		Authenticator: deps.Auth,
		CookieName:    deps.Cookie.Name,
		Log:           deps.Log,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookie)
	patientHandler := handler.NewPatientHandler(deps.Patients, deps.Appointments)
	doctorHandler := handler.NewDoctorHandler(deps.Doctors, deps.Appointments)
	healthHandler := handler.NewHealthHandler(deps.Checks)

	// --- Session ---
	e.GET("/login", authHandler.LoginForm)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)

	// --- Public ---
	e.GET("/public/doctors", doctorHandler.List)

	// --- Patients (PATIENT or ADMIN) ---
	patients := e.Group("/patients")
	patients.GET("/profile", patientHandler.Profile)
	patients.GET("/appointments", patientHandler.Appointments)
	patients.POST("/appointments", patientHandler.CreateAppointment)
	patients.POST("/appointments/:id/cancel", patientHandler.CancelAppointment)

	// --- Doctors (DOCTOR or ADMIN) ---
	doctors := e.Group("/doctors")
	doctors.GET("/appointments", doctorHandler.Appointments)
	doctors.POST("/appointments/:id/status", doctorHandler.UpdateAppointmentStatus)

	// --- Admin ---
	admin := e.Group("/admin")
	admin.GET("/patients", patientHandler.List)

	// --- Operational surface ---
	e.GET("/health", healthHandler.Liveness)        // liveness
	e.GET("/health/ready", healthHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: deps.MetricsGatherer,
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
