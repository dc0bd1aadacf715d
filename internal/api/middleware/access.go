package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospitalmgmt/hospital-api/internal/api/metrics"
	"github.com/hospitalmgmt/hospital-api/internal/core/access"
	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

// Authenticator resolves a session token to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

// AccessConfig wires the Access middleware.
type AccessConfig struct {
	Policy        *access.Policy
	Authenticator Authenticator
	// CookieName is the session cookie consulted when no bearer token is sent.
	CookieName string
	Log        zerolog.Logger
}

// Access enforces the policy on every request. Public paths pass without any
// authentication attempt. Role paths need a valid session whose roles
// intersect the rule's; paths no rule covers are denied.
func Access(cfg AccessConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			rule, ok := cfg.Policy.Match(path)
			if !ok {
				metrics.AccessDecisionsTotal.WithLabelValues("forbidden").Inc()
				cfg.Log.Debug().Str("path", path).Msg("no access rule matched")
				return domain.ErrForbidden
			}
			if rule.IsPublic() {
				metrics.AccessDecisionsTotal.WithLabelValues("public").Inc()
				return next(c)
			}

			token := SessionToken(c.Request(), cfg.CookieName)
			if token == "" {
				metrics.AccessDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}
			principal, err := cfg.Authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrSessionRevoked) {
					metrics.AccessDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				}
				return err
			}

			if err := rule.Authorize(principal); err != nil {
				metrics.AccessDecisionsTotal.WithLabelValues("forbidden").Inc()
				cfg.Log.Info().
					Str("path", path).
					Str("rule", rule.String()).
					Str("username", principal.Username).
					Strs("roles", principal.Roles.Strings()).
					Msg("access denied")
				return err
			}

			metrics.AccessDecisionsTotal.WithLabelValues("granted").Inc()
			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}
