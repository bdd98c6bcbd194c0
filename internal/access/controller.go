// Package access 门禁状态机：键盘密码、"连按三次 #" 录入手势、指纹按压
//
// 中断入口（KeypadInterrupt、FingerTouchInterrupt）只做非阻塞通知；
// 键盘、指纹、看门狗三个任务做全部阻塞工作。
package access

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/smart-lock/internal/fingerprint"
	"github.com/taoyao-code/smart-lock/internal/hal"
	"github.com/taoyao-code/smart-lock/internal/metrics"
)

// 指标标签
const (
	SourcePassword    = "password"
	SourceFingerprint = "fingerprint"

	resultGranted  = "granted"
	resultDenied   = "denied"
	resultAccepted = "accepted"
	resultDropped  = "dropped"
	resultPending  = "pending"

	kindEnroll   = "enroll"
	kindIdentify = "identify"
)

// FingerprintSession 指纹会话
type FingerprintSession interface {
	Enroll(ctx context.Context) fingerprint.Outcome
	Identify(ctx context.Context) fingerprint.Outcome
	SleepUntilAck(ctx context.Context) error
}

// CredentialStore 密码持久化
type CredentialStore interface {
	Change(ctx context.Context, pw string) error
}

// Unlocker 开锁，阻塞到整个动作完成
type Unlocker interface {
	Unlock()
}

// Feedback 声光提示
type Feedback interface {
	KeyPressed(k hal.Key)
	Granted()
	Denied()
	EnrollRequested()
}

type nopFeedback struct{}

func (nopFeedback) KeyPressed(hal.Key) {}
func (nopFeedback) Granted()           {}
func (nopFeedback) Denied()            {}
func (nopFeedback) EnrollRequested()   {}

// Controller 门禁控制器
type Controller struct {
	cc       *ControllerContext
	keypad   hal.Keypad
	session  FingerprintSession
	unlocker Unlocker
	feedback Feedback
	metrics  *metrics.LockMetrics
	log      *zap.Logger
	interval time.Duration
	newID    func() string
}

// Option 配置项
type Option func(*Controller)

// WithFeedback 设置声光提示
func WithFeedback(f Feedback) Option {
	return func(c *Controller) {
		if f != nil {
			c.feedback = f
		}
	}
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.LockMetrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithWatchdogInterval 看门狗轮询周期
func WithWatchdogInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// NewController 创建控制器
func NewController(cc *ControllerContext, keypad hal.Keypad, session FingerprintSession, unlocker Unlocker, opts ...Option) *Controller {
	c := &Controller{
		cc:       cc,
		keypad:   keypad,
		session:  session,
		unlocker: unlocker,
		feedback: nopFeedback{},
		log:      zap.NewNop(),
		interval: WatchdogInterval,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Context 返回状态上下文
func (c *Controller) Context() *ControllerContext {
	return c.cc
}

// ChangePassword 持久化新密码并立即生效；持久化失败时沿用旧密码
func (c *Controller) ChangePassword(ctx context.Context, store CredentialStore, pw string) error {
	if err := store.Change(ctx, pw); err != nil {
		return err
	}
	c.cc.SetCredential([]byte(pw))
	c.log.Info("password updated")
	return nil
}

// State 当前状态
func (c *Controller) State() State {
	return c.cc.State()
}

// KeypadInterrupt 键盘数据就绪中断，多次中断合并为一次唤醒
func (c *Controller) KeypadInterrupt() {
	c.cc.keys.Post()
}

// FingerTouchInterrupt 指纹按压中断
// 空闲时置忙并唤醒指纹任务；忙时直接丢弃，不影响 '#' 计数
func (c *Controller) FingerTouchInterrupt() bool {
	if !c.cc.busy.TryAcquire() {
		c.metrics.TouchDropped()
		return false
	}
	c.cc.touch.Post()
	return true
}

// HandleKey 处理一个按键事件，由键盘任务按到达顺序调用
func (c *Controller) HandleKey(k hal.Key) {
	if k == hal.KeyNone {
		return
	}
	c.feedback.KeyPressed(k)

	switch {
	case k.IsDigit():
		c.handleDigit(k)
	case k == hal.KeyHash:
		c.handleTrigger()
	default:
		// '*' 只有按键音
	}
}

func (c *Controller) handleDigit(k hal.Key) {
	res, expired := c.cc.appendDigit(k.ASCII())
	if expired {
		c.metrics.InputTimeout()
		c.log.Debug("stale password input discarded")
	}

	switch res {
	case digitGranted:
		c.log.Info("password accepted")
		c.metrics.PasswordAttempt(resultGranted)
		c.grant(SourcePassword)
	case digitDenied:
		c.log.Info("password rejected")
		c.metrics.PasswordAttempt(resultDenied)
		c.feedback.Denied()
	}
}

func (c *Controller) handleTrigger() {
	if !c.cc.pressTrigger() {
		return
	}
	if c.cc.busy.Busy() {
		c.log.Info("enroll request dropped, fingerprint busy")
		c.metrics.EnrollRequest(resultDropped)
		return
	}
	if !c.cc.enroll.Set() {
		c.log.Debug("enroll request already pending")
		c.metrics.EnrollRequest(resultPending)
		return
	}
	c.log.Info("enroll requested")
	c.metrics.EnrollRequest(resultAccepted)
	c.feedback.EnrollRequested()
}

// CheckInputTimeout 输入超时检查，返回是否清空了缓冲区
func (c *Controller) CheckInputTimeout() bool {
	if !c.cc.expire() {
		return false
	}
	c.metrics.InputTimeout()
	c.log.Info("password input timed out")
	return true
}

// ServeFingerprint 处理一次已准入的按压
// 有录入请求则录入，否则识别；结束后反复休眠直到模组应答，最后清除忙标志
func (c *Controller) ServeFingerprint(ctx context.Context) fingerprint.Outcome {
	log := c.log.With(zap.String("workflow_id", c.newID()))
	c.metrics.SetBusy(true)
	defer func() {
		c.cc.busy.Release()
		c.metrics.SetBusy(false)
	}()

	kind := kindIdentify
	var out fingerprint.Outcome
	start := time.Now()
	if c.cc.enroll.TryTake() {
		kind = kindEnroll
		log.Info("fingerprint workflow started", zap.String("kind", kind))
		out = c.session.Enroll(ctx)
	} else {
		log.Debug("fingerprint workflow started", zap.String("kind", kind))
		out = c.session.Identify(ctx)
	}
	log.Info("fingerprint workflow finished",
		zap.String("kind", kind),
		zap.Stringer("outcome", out),
		zap.Duration("elapsed", time.Since(start)))
	c.metrics.Workflow(kind, out.String())

	if out.OK() {
		c.grant(SourceFingerprint)
	} else {
		c.feedback.Denied()
	}

	if err := c.session.SleepUntilAck(ctx); err != nil {
		log.Warn("sensor sleep not acknowledged", zap.Error(err))
	}
	return out
}

func (c *Controller) grant(source string) {
	c.feedback.Granted()
	c.metrics.Unlocked(source)
	c.unlocker.Unlock()
}

// RunKeypad 键盘任务：每次唤醒读空键盘
func (c *Controller) RunKeypad(ctx context.Context) error {
	for {
		if err := c.cc.keys.Wait(ctx); err != nil {
			return ignoreCanceled(err)
		}
		for {
			k := c.keypad.ReadKey()
			if k == hal.KeyNone {
				break
			}
			c.HandleKey(k)
		}
	}
}

// RunFingerprint 指纹任务
func (c *Controller) RunFingerprint(ctx context.Context) error {
	for {
		if err := c.cc.touch.Wait(ctx); err != nil {
			return ignoreCanceled(err)
		}
		c.ServeFingerprint(ctx)
	}
}

// RunWatchdog 看门狗任务：定期清除超时的密码输入
func (c *Controller) RunWatchdog(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.CheckInputTimeout()
		}
	}
}

// Run 启动三个任务并等待全部退出
func (c *Controller) Run(ctx context.Context) error {
	tasks := []func(context.Context) error{c.RunKeypad, c.RunFingerprint, c.RunWatchdog}
	errs := make([]error, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func(context.Context) error) {
			defer wg.Done()
			errs[i] = task(ctx)
		}(i, task)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
