package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/taoyao-code/smart-lock/internal/config"
	"github.com/taoyao-code/smart-lock/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), cfgpkg.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	_, err := s.Get(ctx, "smart-lock", "password")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "smart-lock", "password", "111111"))
	v, err := s.Get(ctx, "smart-lock", "password")
	require.NoError(t, err)
	assert.Equal(t, "111111", v)

	got, err := mr.Get("smart-lock:password")
	require.NoError(t, err)
	assert.Equal(t, "111111", got)
}

func TestStore_Credentials(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	mr.Set("smart-lock:password", "246810")

	c := storage.NewCredentials(s, nil)
	require.NoError(t, c.EnsureDefault(ctx))

	pw, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("246810"), pw)
}

func TestStore_Ping(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), cfgpkg.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
