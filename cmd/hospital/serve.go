package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hospitalmgmt/hospital-api/internal/api"
	"github.com/hospitalmgmt/hospital-api/internal/api/handler"
	"github.com/hospitalmgmt/hospital-api/internal/core/credential"
	"github.com/hospitalmgmt/hospital-api/internal/core/service"
	"github.com/hospitalmgmt/hospital-api/internal/infrastructure/config"
	"github.com/hospitalmgmt/hospital-api/internal/infrastructure/fixtures"
	"github.com/hospitalmgmt/hospital-api/internal/infrastructure/queue"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			return runServer(ctx, cfg, log)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	b, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("closing backends")
		}
	}()
	if err := b.openSessionState(ctx, cfg, log); err != nil {
		return err
	}
	if err := b.openNotifier(cfg, log); err != nil {
		return err
	}

	encoder, err := credential.NewBcryptEncoder(cfg.Session.BcryptCost)
	if err != nil {
		return err
	}
	auth, err := service.NewAuthService(b.principals, encoder, b.revoked, b.limiter, service.AuthConfig{
		Secret: sessionSecret(cfg, log),
		TTL:    cfg.Session.TTL,
	}, log)
	if err != nil {
		return err
	}

	if cfg.Store.DemoFixtures {
		enroller := service.NewEnrollmentService(auth, b.patients, b.doctors, log)
		created, err := fixtures.Seed(ctx, enroller, b.patients, cfg.Store.DemoPassword)
		if err != nil {
			return err
		}
		log.Info().Int("created", created).Msg("demo fixtures seeded")
	}

	// The dispatcher outlives the signal context so queued notifications are
	// attempted while the server drains.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.AMQP.Workers, b.notifier, log)
	dispatcher.Start(dispatchCtx)
	defer func() {
		stopDispatch()
		dispatcher.Wait()
	}()

	e := api.NewRouter(api.Dependencies{
		Auth:         auth,
		Patients:     service.NewPatientService(b.patients, b.appointments),
		Doctors:      service.NewDoctorService(b.doctors, b.appointments),
		Appointments: service.NewAppointmentService(b.patients, b.doctors, b.appointments, dispatcher, log),
		Checks:       b.checks,
		Cookie: handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: !cfg.IsDevelopment(),
		},
		Log:               log,
		CORSOrigins:       cfg.CORSOrigins,
		RequestTimeout:    cfg.RequestTimeout,
		MetricsRegisterer: prometheus.DefaultRegisterer,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
