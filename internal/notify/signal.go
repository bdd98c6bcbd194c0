package notify

import "context"

// Signal 二值信号：不排队，多次 Post 在任务取走前合并为一次唤醒
type Signal struct {
	ch chan struct{}
}

// NewSignal 创建信号
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Post 发出信号，已有未取走的信号时直接丢弃，返回是否真正投递
func (s *Signal) Post() bool {
	select {
	case s.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Wait 阻塞等待信号
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryTake 非阻塞取走信号
func (s *Signal) TryTake() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// C 返回底层通道，用于 select
func (s *Signal) C() <-chan struct{} {
	return s.ch
}
