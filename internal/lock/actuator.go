// Package lock 开锁执行器
package lock

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/smart-lock/internal/hal"
)

// Phase 开锁序列中的一步
type Phase struct {
	Direction hal.Direction
	Hold      time.Duration
}

// UnlockSequence 正转 2s、停 2s、反转 2s、停止
var UnlockSequence = []Phase{
	{Direction: hal.Forward, Hold: 2 * time.Second},
	{Direction: hal.Brake, Hold: 2 * time.Second},
	{Direction: hal.Reverse, Hold: 2 * time.Second},
	{Direction: hal.Brake, Hold: 10 * time.Millisecond},
}

// Actuator 开锁执行器
// Unlock 整个序列不可打断，多个任务并发调用时串行执行
type Actuator struct {
	mu       sync.Mutex
	motor    hal.Motor
	sequence []Phase
	sleep    func(time.Duration)
	log      *zap.Logger
	count    atomic.Int64
	active   atomic.Bool
	onUnlock func()
}

// Option 配置项
type Option func(*Actuator)

// WithSleep 替换延时（测试使用）
func WithSleep(fn func(time.Duration)) Option {
	return func(a *Actuator) { a.sleep = fn }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(a *Actuator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithSequence 替换动作序列
func WithSequence(seq []Phase) Option {
	return func(a *Actuator) { a.sequence = seq }
}

// WithUnlockHook 每次开锁完成后回调
func WithUnlockHook(fn func()) Option {
	return func(a *Actuator) { a.onUnlock = fn }
}

// NewActuator 创建执行器，上电时先刹车
func NewActuator(m hal.Motor, opts ...Option) *Actuator {
	a := &Actuator{
		motor:    m,
		sequence: UnlockSequence,
		sleep:    time.Sleep,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(a)
	}
	a.motor.Drive(hal.Brake)
	return a
}

// Unlock 执行完整开锁序列，阻塞直到结束
func (a *Actuator) Unlock() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.active.Store(true)
	defer a.active.Store(false)

	a.log.Info("unlock sequence start")
	start := time.Now()
	for _, p := range a.sequence {
		a.motor.Drive(p.Direction)
		a.sleep(p.Hold)
	}
	n := a.count.Add(1)
	a.log.Info("unlock sequence done", zap.Int64("count", n), zap.Duration("elapsed", time.Since(start)))
	if a.onUnlock != nil {
		a.onUnlock()
	}
}

// Count 累计开锁次数
func (a *Actuator) Count() int64 {
	return a.count.Load()
}

// Active 是否正在执行开锁序列
func (a *Actuator) Active() bool {
	return a.active.Load()
}
