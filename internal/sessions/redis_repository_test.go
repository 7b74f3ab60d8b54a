package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*mr.Miniredis, *redis.Client) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m, redis.NewClient(&redis.Options{Addr: m.Addr()})
}

func TestRedisRepository_CreateGetDelete(t *testing.T) {
	_, client := newMiniredisClient(t)
	repo := NewRedisRepository(client, "test:session:")

	ctx := context.Background()
	s := &Session{
		ID:          "s1",
		UserID:      "github|1",
		DisplayName: "octo",
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   time.Now().UTC().Add(5 * time.Second),
	}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, s.UserID, got.UserID)
	require.Equal(t, s.DisplayName, got.DisplayName)

	require.NoError(t, repo.Delete(ctx, "s1"))
	got2, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Nil(t, got2)
}

func TestRedisRepository_TTLExpiry(t *testing.T) {
	m, client := newMiniredisClient(t)
	repo := NewRedisRepository(client, "")

	ctx := context.Background()
	s := &Session{ID: "s2", UserID: "u2", CreatedAt: time.Now().UTC(), ExpiresAt: time.Now().UTC().Add(1 * time.Second)}
	require.NoError(t, repo.Create(ctx, s))
	require.True(t, m.Exists("session:s2"))

	got, err := repo.Get(ctx, "s2")
	require.NoError(t, err)
	require.NotNil(t, got)

	m.FastForward(2 * time.Second)

	got2, err := repo.Get(ctx, "s2")
	require.NoError(t, err)
	require.Nil(t, got2)
}
