package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRedisStateStore_SingleUse(t *testing.T) {
	m, client := newMiniredisClient(t)
	store := NewRedisStateStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "st-1", StateTTL))
	require.True(t, m.Exists("oauth:state:st-1"))

	ok, err := store.Consume(ctx, "st-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.Consume(ctx, "st-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisStateStore_Expires(t *testing.T) {
	m, client := newMiniredisClient(t)
	store := NewRedisStateStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "st-2", 2*time.Second))
	m.FastForward(3 * time.Second)

	ok, err := store.Consume(ctx, "st-2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStateStore(t *testing.T) {
	store := NewMemoryStateStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", time.Minute))
	require.NoError(t, store.Save(ctx, "b", time.Minute))

	ok, _ := store.Consume(ctx, "a")
	require.True(t, ok)
	ok, _ = store.Consume(ctx, "a")
	require.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = store.Consume(ctx, "b")
	require.False(t, ok, "expired state must not be accepted")

	ok, _ = store.Consume(ctx, "never-saved")
	require.False(t, ok)
}
