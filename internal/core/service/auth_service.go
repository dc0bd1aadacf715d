package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
)

const defaultSessionTTL = 8 * time.Hour

// sessionClaims is the payload of a session token.
type sessionClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthConfig configures session tokens.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

// AuthService implements login, session verification, logout and principal
// provisioning.
type AuthService struct {
	principals ports.PrincipalStore
	encoder    ports.CredentialEncoder
	revoked    ports.RevocationList
	limiter    ports.LoginLimiter
	secret     []byte
	ttl        time.Duration
	// dummyDigest is compared against when the username is unknown so that
	// both failure paths cost one hash comparison.
	dummyDigest string
	log         zerolog.Logger
	now         func() time.Time
}

// NewAuthService wires the service. limiter may be nil to disable login
// throttling.
func NewAuthService(
	principals ports.PrincipalStore,
	encoder ports.CredentialEncoder,
	revoked ports.RevocationList,
	limiter ports.LoginLimiter,
	cfg AuthConfig,
	log zerolog.Logger,
) (*AuthService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth service: empty session secret")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}
	dummy, err := encoder.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return &AuthService{
		principals:  principals,
		encoder:     encoder,
		revoked:     revoked,
		limiter:     limiter,
		secret:      []byte(cfg.Secret),
		ttl:         cfg.TTL,
		dummyDigest: dummy,
		log:         log,
		now:         time.Now,
	}, nil
}

// Login verifies the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		blocked, err := s.limiter.Blocked(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login limiter check failed, continuing")
		} else if blocked {
			return nil, domain.ErrTooManyAttempts
		}
	}

	principal, err := s.principals.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrPrincipalNotFound) {
		s.encoder.Verify(password, s.dummyDigest)
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.encoder.Verify(password, principal.PasswordHash) {
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login limiter reset failed")
		}
	}

	return s.issue(principal)
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login limiter update failed")
	}
}

func (s *AuthService) issue(p *domain.Principal) (*ports.Session, error) {
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	claims := sessionClaims{
		Username: p.Username,
		Roles:    p.Roles.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	session := *p
	session.PasswordHash = ""
	return &ports.Session{Token: token, ExpiresAt: expires, Principal: &session}, nil
}

func (s *AuthService) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Username == "" {
		return nil, errors.New("session token missing identity claims")
	}
	return claims, nil
}

// Authenticate resolves a session token to the principal it was issued for.
// Roles are taken from the token; a principal issued with no roles stays
// roleless.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if revoked {
		return nil, domain.ErrSessionRevoked
	}

	roles, err := domain.ParseRoleSet(claims.Roles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	return &domain.Principal{
		ID:       claims.Subject,
		Username: claims.Username,
		Roles:    roles,
	}, nil
}

// Logout revokes the session until it would have expired. Tokens that are
// already invalid need no revocation and are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("logout with invalid session ignored")
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Provision creates a principal with a freshly hashed password.
func (s *AuthService) Provision(ctx context.Context, username, password string, roles domain.RoleSet) (*domain.Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	hash, err := s.encoder.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("provision: %w", err)
	}

	created, err := s.principals.Create(ctx, &domain.Principal{
		Username:     username,
		PasswordHash: hash,
		Roles:        domain.NewRoleSet(roles...),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("provision: %w", err)
	}
	return created, nil
}
