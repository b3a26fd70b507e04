package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

func TestNewUserHashesPasswordAndNormalizesEmail(t *testing.T) {
	u, err := NewUser(uuid.New(), "  Ravi@Example.COM ", "tandoor42", auth.RoleVendor, Profile{Name: "Ravi"})
	require.NoError(t, err)

	assert.Equal(t, "ravi@example.com", u.Email)
	assert.NotEqual(t, "tandoor42", u.PasswordHash)
	assert.True(t, u.CheckPassword("tandoor42"))
	assert.False(t, u.CheckPassword("tandoor43"))
	assert.True(t, u.Active)
}

func TestNewUserValidation(t *testing.T) {
	id := uuid.New()
	_, err := NewUser(id, "not-an-email", "secret1", auth.RoleVendor, Profile{Name: "A"})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = NewUser(id, "a@b.co", "123", auth.RoleVendor, Profile{Name: "A"})
	require.ErrorIs(t, err, ErrWeakPassword)

	_, err = NewUser(id, "a@b.co", "secret1", auth.Role("admin"), Profile{Name: "A"})
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = NewUser(id, "a@b.co", "secret1", auth.RoleSupplier, Profile{Name: " "})
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestParseRegistrationRoleAcceptsLegacyAliases(t *testing.T) {
	cases := map[string]auth.Role{
		"buyer":    auth.RoleVendor,
		"Seller":   auth.RoleSupplier,
		"vendor":   auth.RoleVendor,
		"supplier": auth.RoleSupplier,
	}
	for raw, want := range cases {
		got, err := ParseRegistrationRole(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseRegistrationRole("admin")
	require.ErrorIs(t, err, ErrInvalidRole)
}
