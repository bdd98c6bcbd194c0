package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taoyao-code/smart-lock/internal/storage"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_store (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (namespace, key)
)`

// Store 基于 PostgreSQL kv_store 表的键值存储
type Store struct {
	pool *pgxpool.Pool
}

// NewStore 创建存储
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate 建表
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate kv_store: %w", err)
	}
	return nil
}

// Get 读取，不存在返回 storage.ErrNotFound
func (s *Store) Get(ctx context.Context, ns, key string) (string, error) {
	var v string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM kv_store WHERE namespace=$1 AND key=$2`, ns, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	return v, err
}

// SetNX 不存在时写入
func (s *Store) SetNX(ctx context.Context, ns, key, val string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO kv_store (namespace, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (namespace, key) DO NOTHING`, ns, key, val)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Set 覆盖写入
func (s *Store) Set(ctx context.Context, ns, key, val string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO kv_store (namespace, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (namespace, key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`, ns, key, val)
	return err
}

// Ping 探活
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
