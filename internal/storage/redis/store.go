package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/taoyao-code/smart-lock/internal/storage"
)

// Store 基于 Redis 的键值存储，键为 ns:key
type Store struct {
	client *Client
}

// NewStore 创建存储
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func key(ns, k string) string { return ns + ":" + k }

// Get 读取，不存在返回 storage.ErrNotFound
func (s *Store) Get(ctx context.Context, ns, k string) (string, error) {
	v, err := s.client.Get(ctx, key(ns, k)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	return v, err
}

// SetNX 不存在时写入（SETNX）
func (s *Store) SetNX(ctx context.Context, ns, k, val string) (bool, error) {
	return s.client.SetNX(ctx, key(ns, k), val, 0).Result()
}

// Set 覆盖写入
func (s *Store) Set(ctx context.Context, ns, k, val string) error {
	return s.client.Set(ctx, key(ns, k), val, 0).Err()
}

// Ping 探活
func (s *Store) Ping(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}
