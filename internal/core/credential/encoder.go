// Package credential hashes and verifies stored passwords.
package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// BcryptEncoder is a salted, adaptive password encoder. It holds no mutable
// state and is safe for concurrent use.
type BcryptEncoder struct {
	cost int
}

// NewBcryptEncoder returns an encoder with the given work factor. A zero cost
// selects DefaultCost.
func NewBcryptEncoder(cost int) (*BcryptEncoder, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("credential: bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptEncoder{cost: cost}, nil
}

// Hash returns a fresh digest for plaintext. Every call draws a new salt, so
// hashing the same plaintext twice yields different digests.
func (e *BcryptEncoder) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), e.cost)
	if err != nil {
		return "", fmt.Errorf("credential: hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest is a
// mismatch, not an error.
func (e *BcryptEncoder) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// NeedsRehash reports whether digest was produced with a different work
// factor than the encoder's, or cannot be parsed at all.
func (e *BcryptEncoder) NeedsRehash(digest string) bool {
	c, err := bcrypt.Cost([]byte(digest))
	return err != nil || c != e.cost
}

// Cost returns the encoder's work factor.
func (e *BcryptEncoder) Cost() int {
	return e.cost
}
