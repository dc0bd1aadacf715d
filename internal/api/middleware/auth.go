package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

// PrincipalKey is the echo context key holding the authenticated
// *domain.Principal.
const PrincipalKey = "principal"

// SessionToken extracts the session token from an "Authorization: Bearer"
// header, falling back to the session cookie. It returns "" when the request
// carries neither.
func SessionToken(r *http.Request, cookieName string) string {
	if authHeader := r.Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Principal returns the principal stored by Access, or nil for public routes.
func Principal(c echo.Context) *domain.Principal {
	p, _ := c.Get(PrincipalKey).(*domain.Principal)
	return p
}
