package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/ventrest-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/ventrest-api/internal/domains/users/adapters/tokens/jwt"
	"github.com/Apurer/ventrest-api/internal/domains/users/domain"
	"github.com/Apurer/ventrest-api/internal/domains/users/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

type fixture struct {
	svc      *Service
	sessions *memory.SessionStore
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	repo := memory.NewRepository()
	repo.WithClock(clock)
	f.sessions = memory.NewSessionStore()
	f.sessions.WithClock(clock)
	issuer, err := jwt.NewIssuer("0123456789abcdef0123", time.Hour)
	require.NoError(t, err)
	issuer.WithClock(clock)

	f.svc = NewService(repo, f.sessions, issuer)
	return f
}

func registerInput(email, role string) ports.RegisterInput {
	return ports.RegisterInput{
		Email:    email,
		Password: "secret1",
		Role:     role,
		Profile:  domain.Profile{Name: "Asha Stall", BusinessName: "Asha Chaat"},
	}
}

func TestRegisterOpensSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, registerInput("Asha@Example.com", "buyer"))
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", session.User.Entity.Email)
	assert.Equal(t, auth.RoleVendor, session.User.Entity.Role)
	assert.NotEmpty(t, session.Token.Value)

	identity, err := f.svc.Authenticate(ctx, session.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, session.User.Entity.ID, identity.UserID)
	assert.True(t, identity.IsVendor())
}

func TestRegisterRejectsDuplicateEmailAndBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerInput("dup@example.com", "supplier"))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, registerInput("DUP@example.com", "vendor"))
	require.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Register(ctx, registerInput("other@example.com", "admin"))
	require.ErrorIs(t, err, ErrInvalidInput)

	input := registerInput("short@example.com", "vendor")
	input.Password = "123"
	_, err = f.svc.Register(ctx, input)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerInput("login@example.com", "supplier"))
	require.NoError(t, err)

	session, err := f.svc.Login(ctx, " LOGIN@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleSupplier, session.User.Entity.Role)

	_, err = f.svc.Login(ctx, "login@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrAuthentication)

	_, err = f.svc.Login(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, ErrAuthentication)
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.Register(ctx, registerInput("out@example.com", "vendor"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, session.Token.Value))
	require.NoError(t, f.svc.Logout(ctx, ""))

	_, err = f.svc.Authenticate(ctx, session.Token.Value)
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.Register(ctx, registerInput("late@example.com", "vendor"))
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	_, err = f.svc.Authenticate(ctx, session.Token.Value)
	require.ErrorIs(t, err, ErrAuthentication)

	purged, err := f.sessions.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestUpdateProfileKeepsEmailAndRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.Register(ctx, registerInput("profile@example.com", "vendor"))
	require.NoError(t, err)
	caller := session.User.Entity.Identity()

	updated, err := f.svc.UpdateProfile(ctx, caller, domain.Profile{
		Name:    "  Asha Kumar ",
		Phone:   "555-0100",
		Address: domain.Address{City: "Pune"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Kumar", updated.Entity.Name)
	assert.Equal(t, "Pune", updated.Entity.Address.City)
	assert.Equal(t, "profile@example.com", updated.Entity.Email)
	assert.Equal(t, auth.RoleVendor, updated.Entity.Role)

	_, err = f.svc.UpdateProfile(ctx, caller, domain.Profile{Name: " "})
	require.ErrorIs(t, err, ErrInvalidInput)

	me, err := f.svc.Me(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "Asha Kumar", me.Entity.Name)
}

func TestDeactivateBlocksAuthentication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.Register(ctx, registerInput("gone@example.com", "supplier"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Deactivate(ctx, session.User.Entity.Identity()))

	_, err = f.svc.Authenticate(ctx, session.Token.Value)
	require.ErrorIs(t, err, ErrAuthentication)

	_, err = f.svc.Login(ctx, "gone@example.com", "secret1")
	require.ErrorIs(t, err, ErrAuthentication)
	assert.ErrorIs(t, err, ports.ErrAccountInactive)
}
