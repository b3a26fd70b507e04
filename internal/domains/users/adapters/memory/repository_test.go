package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/ventrest-api/internal/domains/users/domain"
	"github.com/Apurer/ventrest-api/internal/domains/users/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

func TestRepositoryEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	user, err := domain.NewUser(uuid.New(), "kiosk@example.com", "secret1", auth.RoleVendor, domain.Profile{Name: "Kiosk"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, user)
	require.NoError(t, err)

	clash, err := domain.NewUser(uuid.New(), "KIOSK@example.com", "secret1", auth.RoleSupplier, domain.Profile{Name: "Other"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, clash)
	require.ErrorIs(t, err, ports.ErrEmailTaken)

	found, err := repo.GetByEmail(ctx, "Kiosk@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.Entity.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepositoryUpdateIgnoresEmailAndRole(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	user, err := domain.NewUser(uuid.New(), "farm@example.com", "secret1", auth.RoleSupplier, domain.Profile{Name: "Farm"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, user)
	require.NoError(t, err)

	changed := *user
	changed.Email = "elsewhere@example.com"
	changed.Role = auth.RoleVendor
	changed.Name = "Green Farm"
	updated, err := repo.Update(ctx, &changed)
	require.NoError(t, err)
	assert.Equal(t, "farm@example.com", updated.Entity.Email)
	assert.Equal(t, auth.RoleSupplier, updated.Entity.Role)
	assert.Equal(t, "Green Farm", updated.Entity.Name)

	updated.Entity.Name = "mutated"
	again, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green Farm", again.Entity.Name)
}
