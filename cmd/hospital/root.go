package main

import (
	"context"
	"crypto/rand"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hospitalmgmt/hospital-api/internal/infrastructure/config"
	"github.com/hospitalmgmt/hospital-api/pkg/logger"
)

const serviceName = "hospital-api"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hospital",
		Short:        "Hospital API server and administration",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newHashPasswordCmd())
	root.AddCommand(newProvisionCmd())
	return root
}

// bootstrap loads the configuration and installs the process logger.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log, err := logger.Init(logger.Options{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		Service:     serviceName,
	})
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// sessionSecret returns the configured signing secret. Development may run
// without one: a random secret is generated, so sessions do not survive a
// restart.
func sessionSecret(cfg *config.Config, log zerolog.Logger) string {
	if cfg.Session.JWTSecret != "" {
		return cfg.Session.JWTSecret
	}
	log.Warn().Msg("JWT_SECRET not set, using an ephemeral development secret")
	return rand.Text()
}
