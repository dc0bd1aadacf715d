package ports

import (
	"context"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

// PrincipalStore persists login identities together with their roles.
type PrincipalStore interface {
	// FindByUsername returns domain.ErrPrincipalNotFound when no principal has
	// that username.
	FindByUsername(ctx context.Context, username string) (*domain.Principal, error)
	// Create returns domain.ErrPrincipalExists on a duplicate username.
	Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error)
}
