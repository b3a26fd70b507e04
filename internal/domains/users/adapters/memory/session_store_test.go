package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewSessionStore()
	store.WithClock(func() time.Time { return now })

	alice, bob := uuid.New(), uuid.New()
	require.NoError(t, store.Save(ctx, alice, "a1", now.Add(time.Hour)))
	require.NoError(t, store.Save(ctx, alice, "a2", now.Add(time.Minute)))
	require.NoError(t, store.Save(ctx, bob, "b1", now.Add(time.Hour)))

	ok, err := store.Exists(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = store.Exists(ctx, "a2")
	assert.False(t, ok)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	require.NoError(t, store.DeleteForUser(ctx, alice))
	ok, _ = store.Exists(ctx, "a1")
	assert.False(t, ok)
	ok, _ = store.Exists(ctx, "b1")
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "b1"))
	ok, _ = store.Exists(ctx, "b1")
	assert.False(t, ok)
}
