package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalmgmt/hospital-api/internal/api/middleware"
	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

// caller returns the principal stored by the Access middleware. A missing
// principal means the route was mounted outside a role rule, which is a
// wiring fault, so it fails closed with ErrUnauthenticated.
func caller(c echo.Context) (*domain.Principal, error) {
	p := middleware.Principal(c)
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}
