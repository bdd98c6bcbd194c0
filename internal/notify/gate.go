package notify

import "sync/atomic"

// Gate 忙标志准入：同一时刻只允许一个操作在途
type Gate struct {
	busy atomic.Bool
}

// TryAcquire 空闲时原子置忙并返回 true；忙时返回 false
func (g *Gate) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release 清除忙标志
func (g *Gate) Release() {
	g.busy.Store(false)
}

// Busy 当前是否忙
func (g *Gate) Busy() bool {
	return g.busy.Load()
}

// Latch 一次性请求标志，由消费方取走
type Latch struct {
	set atomic.Bool
}

// Set 置位，返回 false 表示此前已置位
func (l *Latch) Set() bool {
	return l.set.CompareAndSwap(false, true)
}

// TryTake 取走请求
func (l *Latch) TryTake() bool {
	return l.set.CompareAndSwap(true, false)
}

// Pending 是否有未取走的请求
func (l *Latch) Pending() bool {
	return l.set.Load()
}
