package notify

import (
	"context"
	"sync"
)

// Mailbox 单槽覆盖邮箱：消费前多次投递只保留最后一个值
type Mailbox[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
	ready *Signal
}

// NewMailbox 创建邮箱
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ready: NewSignal()}
}

// Post 写入新值，覆盖未被取走的旧值
// 返回 true 表示覆盖了旧值
func (m *Mailbox[T]) Post(v T) bool {
	m.mu.Lock()
	overwritten := m.full
	m.value = v
	m.full = true
	m.mu.Unlock()
	m.ready.Post()
	return overwritten
}

// TryReceive 非阻塞读取
func (m *Mailbox[T]) TryReceive() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if !m.full {
		return zero, false
	}
	v := m.value
	m.value = zero
	m.full = false
	return v, true
}

// Receive 阻塞读取最新值
func (m *Mailbox[T]) Receive(ctx context.Context) (T, error) {
	for {
		if v, ok := m.TryReceive(); ok {
			return v, nil
		}
		if err := m.ready.Wait(ctx); err != nil {
			var zero T
			return zero, err
		}
	}
}
