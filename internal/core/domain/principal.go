package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is a coarse-grained permission group.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// ParseRole accepts "admin", "ADMIN" or "ROLE_ADMIN" style names.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "ROLE_")
	switch r := Role(name); r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// RoleSet is an unordered set of roles. The zero value is the empty set.
type RoleSet []Role

// NewRoleSet builds a set from roles, dropping duplicates.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if !set.Has(r) {
			set = append(set, r)
		}
	}
	return set
}

// ParseRoleSet parses role names, failing on the first unknown one.
func ParseRoleSet(names []string) (RoleSet, error) {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return NewRoleSet(roles...), nil
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	for _, have := range s {
		if have == r {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one role.
// An empty set intersects nothing.
func (s RoleSet) Intersects(other RoleSet) bool {
	for _, r := range s {
		if other.Has(r) {
			return true
		}
	}
	return false
}

// Strings returns the role names in set order.
func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

// Principal is an identity that can authenticate. Roles come from the
// principal->role relationship of the backing store and may be empty.
type Principal struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        RoleSet   `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasRole reports whether the principal holds r.
func (p *Principal) HasRole(r Role) bool {
	return p != nil && p.Roles.Has(r)
}
