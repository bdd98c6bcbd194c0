package access

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/taoyao-code/smart-lock/internal/notify"
)

// 密码输入与录入手势参数
const (
	PasswordLength    = 6
	InputTimeout      = 5000 * time.Millisecond
	WatchdogInterval  = 1000 * time.Millisecond
	EnrollTriggerKeys = 3
)

// InputBuffer 密码输入缓冲
type InputBuffer struct {
	digits       [PasswordLength]byte
	length       int
	lastDigit    time.Time
	triggerCount int
}

// stale 有未完成输入且距上次按数字键超过 InputTimeout
func (b *InputBuffer) stale(now time.Time) bool {
	return b.length > 0 && now.Sub(b.lastDigit) > InputTimeout
}

func (b *InputBuffer) clear() {
	b.length = 0
}

// ControllerContext 门禁状态机的全部可变状态
// 缓冲区只由键盘任务与看门狗修改，二者共用 mu
type ControllerContext struct {
	mu         sync.Mutex
	buf        InputBuffer
	credential []byte

	busy   notify.Gate
	enroll notify.Latch
	keys   *notify.Signal
	touch  *notify.Signal

	now func() time.Time
}

// NewControllerContext 创建上下文，credential 为当前 6 位密码
func NewControllerContext(credential []byte, now func() time.Time) *ControllerContext {
	if now == nil {
		now = time.Now
	}
	cc := &ControllerContext{
		keys:  notify.NewSignal(),
		touch: notify.NewSignal(),
		now:   now,
	}
	cc.SetCredential(credential)
	return cc
}

// SetCredential 替换密码（修改密码后调用）
func (cc *ControllerContext) SetCredential(pw []byte) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.credential = append([]byte(nil), pw...)
}

// Busy 指纹流程是否在途
func (cc *ControllerContext) Busy() bool {
	return cc.busy.Busy()
}

// EnrollPending 是否有待执行的录入请求
func (cc *ControllerContext) EnrollPending() bool {
	return cc.enroll.Pending()
}

// digitResult 一次数字键处理结果
type digitResult int

const (
	digitAppended digitResult = iota
	digitGranted
	digitDenied
)

// appendDigit 追加数字；满 6 位时比较密码并清空
// expired 表示追加前发现旧输入已过期并先行清空
func (cc *ControllerContext) appendDigit(ascii byte) (res digitResult, expired bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	now := cc.now()
	if cc.buf.stale(now) {
		cc.buf.clear()
		expired = true
	}
	cc.buf.digits[cc.buf.length] = ascii
	cc.buf.length++
	cc.buf.lastDigit = now
	cc.buf.triggerCount = 0

	if cc.buf.length < PasswordLength {
		return digitAppended, expired
	}
	match := len(cc.credential) == PasswordLength &&
		subtle.ConstantTimeCompare(cc.buf.digits[:], cc.credential) == 1
	cc.buf.clear()
	if match {
		return digitGranted, expired
	}
	return digitDenied, expired
}

// pressTrigger '#'：丢弃已输入数字，计数加一；满 3 次返回 true 并清零
func (cc *ControllerContext) pressTrigger() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.buf.clear()
	cc.buf.triggerCount++
	if cc.buf.triggerCount < EnrollTriggerKeys {
		return false
	}
	cc.buf.triggerCount = 0
	return true
}

// expire 看门狗：输入超时则清空，返回是否清空
func (cc *ControllerContext) expire() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if !cc.buf.stale(cc.now()) {
		return false
	}
	cc.buf.clear()
	return true
}

// snapshot 当前输入长度与 '#' 计数
func (cc *ControllerContext) snapshot() (length, triggers int) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.buf.length, cc.buf.triggerCount
}
