// Package storage 密码持久化：按命名空间存取的键值存储
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("storage: not found")

// KV 命名空间键值存储
type KV interface {
	Get(ctx context.Context, ns, key string) (string, error)
	// SetNX 键不存在时写入，返回是否写入
	SetNX(ctx context.Context, ns, key, val string) (bool, error)
	Set(ctx context.Context, ns, key, val string) error
}

// Memory 进程内存储（测试与默认驱动）
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func memKey(ns, key string) string { return ns + ":" + key }

// Get 读取
func (m *Memory) Get(_ context.Context, ns, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[memKey(ns, key)]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// SetNX 不存在时写入
func (m *Memory) SetNX(_ context.Context, ns, key, val string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(ns, key)
	if _, ok := m.data[k]; ok {
		return false, nil
	}
	m.data[k] = val
	return true, nil
}

// Set 覆盖写入
func (m *Memory) Set(_ context.Context, ns, key, val string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[memKey(ns, key)] = val
	return nil
}
