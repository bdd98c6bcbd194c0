package pg

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/smart-lock/internal/config"
	"github.com/taoyao-code/smart-lock/internal/storage"
)

// 需要真实 PostgreSQL：LOCK_TEST_PG_DSN=postgres://... go test ./internal/storage/pg
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("LOCK_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("LOCK_TEST_PG_DSN 未设置，跳过")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, cfgpkg.PostgresConfig{DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewStore(pool)
	require.NoError(t, s.Migrate(ctx))
	_, err = pool.Exec(ctx, `DELETE FROM kv_store WHERE namespace=$1`, "test-lock")
	require.NoError(t, err)
	return s
}

func TestStore_SetNX(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "test-lock", "password", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "test-lock", "password", "999999")
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := s.Get(ctx, "test-lock", "password")
	require.NoError(t, err)
	assert.Equal(t, "123456", v)
}

func TestStore_SetAndMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "test-lock", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "test-lock", "password", "111111"))
	require.NoError(t, s.Set(ctx, "test-lock", "password", "222222"))
	v, err := s.Get(ctx, "test-lock", "password")
	require.NoError(t, err)
	assert.Equal(t, "222222", v)
}

func TestPgxZapLogger(t *testing.T) {
	l := &pgxZapLogger{logger: zap.NewNop()}
	assert.NotPanics(t, func() {
		l.Log(context.Background(), 0, "msg", map[string]any{"sql": "SELECT 1"})
	})
}
