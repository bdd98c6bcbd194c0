// Package fingerprint 指纹会话控制：单条模组指令与录入/识别两个流程
package fingerprint

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/smart-lock/internal/protocol/fpm"
)

const (
	// RequiredCaptures 录入需要按压的次数
	RequiredCaptures = 4
	// CaptureTimeout 两次成功采集之间的最长间隔
	CaptureTimeout = 5 * time.Second
	// LiftDelay 提示拿开手指后的等待
	LiftDelay = 500 * time.Millisecond
	// SleepRetryInterval 休眠未应答时的重试间隔
	SleepRetryInterval = 10 * time.Millisecond
	// PowerOnDelay 模组上电稳定时间
	PowerOnDelay = 150 * time.Millisecond
	// DefaultRetryInterval 录入采集重试间隔
	DefaultRetryInterval = 10 * time.Millisecond
	// DefaultSecurityLevel 初始化时写入的安全等级
	DefaultSecurityLevel byte = 0
)

// Exchanger 指令收发
type Exchanger interface {
	Exchange(frame []byte, timeout time.Duration) (*fpm.Frame, error)
}

// Prompter 录入过程中的用户提示
type Prompter interface {
	LiftFinger()
	PlaceFinger()
}

type nopPrompter struct{}

func (nopPrompter) LiftFinger()  {}
func (nopPrompter) PlaceFinger() {}

// Controller 指纹会话控制器
// 同一时刻只由指纹任务调用，内部缓存用锁保护以便诊断接口读取
type Controller struct {
	ex     Exchanger
	log    *zap.Logger
	prompt Prompter
	now    func() time.Time
	delay  func(time.Duration)
	pacer  *pacer

	onTemplates func(uint16)

	mu        sync.RWMutex
	templates uint16
	serial    string
}

// Option 配置项
type Option func(*Controller)

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPrompter 设置录入提示
func WithPrompter(p Prompter) Option {
	return func(c *Controller) {
		if p != nil {
			c.prompt = p
		}
	}
}

// WithClock 替换时钟与延时（测试使用）
func WithClock(now func() time.Time, delay func(time.Duration)) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
		if delay != nil {
			c.delay = delay
		}
	}
}

// WithRetryInterval 录入采集重试间隔，<=0 不节流
func WithRetryInterval(d time.Duration) Option {
	return func(c *Controller) { c.pacer = newPacer(d) }
}

// WithTemplateObserver 有效模板数变化回调
func WithTemplateObserver(fn func(uint16)) Option {
	return func(c *Controller) { c.onTemplates = fn }
}

// New 创建控制器
func New(ex Exchanger, opts ...Option) *Controller {
	c := &Controller{
		ex:     ex,
		log:    zap.NewNop(),
		prompt: nopPrompter{},
		now:    time.Now,
		delay:  time.Sleep,
		pacer:  newPacer(DefaultRetryInterval),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Initialize 上电初始化：读序列号、设安全等级、读模板数、进入休眠
// 单步失败只记日志，只有 ctx 结束才返回错误
func (c *Controller) Initialize(ctx context.Context) error {
	c.delay(PowerOnDelay)

	if sn, st, err := c.ReadSerialNumber(); succeeded(st, err) {
		c.log.Info("fingerprint sensor detected", zap.String("serial", sn))
	} else {
		c.log.Warn("read sensor serial failed", statusFailure(st, err))
	}

	if st, err := c.SetSecurityLevel(DefaultSecurityLevel); !succeeded(st, err) {
		c.log.Warn("set security level failed", statusFailure(st, err))
	}

	if st, n, err := c.ReadValidTemplateCount(); succeeded(st, err) {
		c.log.Info("fingerprint templates", zap.Uint16("count", n))
	} else {
		c.log.Warn("read template count failed", statusFailure(st, err))
	}

	if err := c.SleepUntilAck(ctx); err != nil {
		return err
	}
	c.log.Info("fingerprint sensor initialized")
	return nil
}

// TemplateCount 最近一次读到的有效模板数
func (c *Controller) TemplateCount() uint16 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.templates
}

// SerialNumber 模组序列号
func (c *Controller) SerialNumber() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serial
}

// Sleep 休眠
func (c *Controller) Sleep() (fpm.Status, error) {
	return c.status(fpm.BuildSleep())
}

// SleepUntilAck 重复休眠直到模组确认
func (c *Controller) SleepUntilAck(ctx context.Context) error {
	for {
		st, err := c.Sleep()
		if succeeded(st, err) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(SleepRetryInterval):
		}
	}
}

// GetImage 录入图像
func (c *Controller) GetImage() (fpm.Status, error) {
	return c.status(fpm.BuildGetImage())
}

// GenerateCharacteristics 图像生成特征存入 bufferID
func (c *Controller) GenerateCharacteristics(bufferID byte) (fpm.Status, error) {
	return c.status(fpm.BuildGenChar(bufferID))
}

// Search 以缓冲区 1 的特征搜索全部指纹库
func (c *Controller) Search() (fpm.Status, error) {
	f, err := c.do(fpm.BuildSearch(fpm.DefaultBufferID, fpm.SearchStartPage, fpm.SearchPageCount))
	if err != nil {
		c.log.Debug("search no answer", zap.Error(err))
		return fpm.StatusNoResponse, err
	}
	if f.Status().OK() {
		if r, perr := fpm.ParseSearchResult(f.Payload()); perr == nil {
			c.log.Info("fingerprint matched", zap.Uint16("page", r.PageID), zap.Uint16("score", r.Score))
		}
	} else {
		c.logStatus(fpm.CmdSearch, f.Status())
	}
	return f.Status(), nil
}

// Merge 合并特征生成模板
func (c *Controller) Merge() (fpm.Status, error) {
	return c.status(fpm.BuildRegModel())
}

// StoreTemplate 将缓冲区 1 的模板存到 pageID
func (c *Controller) StoreTemplate(pageID uint16) (fpm.Status, error) {
	return c.status(fpm.BuildStoreChar(fpm.DefaultBufferID, pageID))
}

// SetSecurityLevel 写安全等级寄存器
func (c *Controller) SetSecurityLevel(level byte) (fpm.Status, error) {
	return c.status(fpm.BuildSetSecurityLevel(level))
}

// ReadValidTemplateCount 读有效模板个数，成功时刷新缓存
func (c *Controller) ReadValidTemplateCount() (fpm.Status, uint16, error) {
	f, err := c.do(fpm.BuildValidTemplateNum())
	if err != nil {
		return fpm.StatusNoResponse, 0, err
	}
	if !f.Status().OK() {
		c.logStatus(fpm.CmdValidTemplateNum, f.Status())
		return f.Status(), 0, nil
	}
	n, err := fpm.TemplateCount(f.Payload())
	if err != nil {
		return f.Status(), 0, err
	}

	c.mu.Lock()
	c.templates = n
	c.mu.Unlock()
	if c.onTemplates != nil {
		c.onTemplates(n)
	}
	return f.Status(), n, nil
}

// ReadSerialNumber 读芯片序列号
func (c *Controller) ReadSerialNumber() (string, fpm.Status, error) {
	f, err := c.do(fpm.BuildGetChipSN())
	if err != nil {
		return "", fpm.StatusNoResponse, err
	}
	if !f.Status().OK() {
		c.logStatus(fpm.CmdGetChipSN, f.Status())
		return "", f.Status(), nil
	}
	sn := fpm.SerialNumber(f.Payload())
	c.mu.Lock()
	c.serial = sn
	c.mu.Unlock()
	return sn, f.Status(), nil
}

// do 按帧内指令码选择应答超时
func (c *Controller) do(frame []byte) (*fpm.Frame, error) {
	return c.ex.Exchange(frame, fpm.TimeoutFor(fpm.CommandCode(frame)))
}

func (c *Controller) status(frame []byte) (fpm.Status, error) {
	code := fpm.CommandCode(frame)
	f, err := c.do(frame)
	if err != nil {
		c.log.Debug("sensor command no answer", zap.String("cmd", fpm.CommandName(code)), zap.Error(err))
		return fpm.StatusNoResponse, err
	}
	if !f.Status().OK() {
		c.logStatus(code, f.Status())
	}
	return f.Status(), nil
}

func (c *Controller) logStatus(code byte, st fpm.Status) {
	c.log.Debug("sensor command rejected",
		zap.String("cmd", fpm.CommandName(code)),
		zap.Uint8("status", byte(st)),
		zap.Error(&fpm.StatusError{Code: code, Status: st}))
}

// statusFailure 失败原因：无应答时只有错误，否则是确认码
func statusFailure(st fpm.Status, err error) zap.Field {
	if err != nil {
		return zap.Error(err)
	}
	return zap.Stringer("status", st)
}

// succeeded 有应答且确认码为 0
func succeeded(st fpm.Status, err error) bool {
	return err == nil && st.OK()
}
