package ports

import (
	"context"
	"time"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal *domain.Principal
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	// Authenticate resolves a session token to its principal.
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
	Logout(ctx context.Context, token string) error
}

// Provisioner creates principals with hashed credentials.
type Provisioner interface {
	Provision(ctx context.Context, username, password string, roles domain.RoleSet) (*domain.Principal, error)
}
