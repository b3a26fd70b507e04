// Package auth carries the authenticated caller through request contexts.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Role is one of the two marketplace sides.
type Role string

const (
	RoleVendor   Role = "vendor"
	RoleSupplier Role = "supplier"
)

// ErrUnknownRole is returned by ParseRole for anything other than the two roles.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole accepts the canonical role names.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleVendor:
		return RoleVendor, nil
	case RoleSupplier:
		return RoleSupplier, nil
	default:
		return "", ErrUnknownRole
	}
}

// Identity is the verified caller of a request.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// IsVendor reports whether the caller buys from suppliers.
func (i Identity) IsVendor() bool { return i.Role == RoleVendor }

// IsSupplier reports whether the caller sells products.
func (i Identity) IsSupplier() bool { return i.Role == RoleSupplier }

type identityKey struct{}

// WithIdentity stores the caller on ctx.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// FromContext returns the caller stored on ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
