package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Supplier ")
	require.NoError(t, err)
	assert.Equal(t, RoleSupplier, role)

	_, err = ParseRole("admin")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestIdentityRoundTripsThroughContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	want := Identity{UserID: uuid.New(), Role: RoleVendor}
	got, ok := FromContext(WithIdentity(context.Background(), want))
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, got.IsVendor())
	assert.False(t, got.IsSupplier())
}
