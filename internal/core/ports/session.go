package ports

import (
	"context"
	"time"
)

// CredentialEncoder hashes passwords for storage and checks them at login.
type CredentialEncoder interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// RevocationList remembers logged-out session IDs until they would have
// expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// LoginLimiter counts failed logins per key within a fixed window.
type LoginLimiter interface {
	// Blocked reports whether key has exhausted its failures for the window.
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
