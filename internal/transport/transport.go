// Package transport 指纹模组串口收发：发一帧，在指令超时内等一帧应答
package transport

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/smart-lock/internal/protocol/fpm"
)

var (
	// ErrNoResponse 超时时间内没有收到任何字节
	ErrNoResponse = errors.New("transport: no response")
	// ErrInvalidResponse 应答未通过包头/校验和/包标识检查
	ErrInvalidResponse = errors.New("transport: invalid response")
)

// 交互结果（指标标签）
const (
	ResultOK         = "ok"
	ResultStatus     = "status"
	ResultNoResponse = "no_response"
	ResultMalformed  = "malformed"
	ResultInvalid    = "invalid"
	ResultIOError    = "io_error"
)

const readChunk = 64

// Observer 每次交互结束后回调
type Observer func(code byte, result string, elapsed time.Duration)

// Transport 串行化的请求/应答收发器
type Transport struct {
	mu       sync.Mutex
	ch       Channel
	validate bool
	observe  Observer
	log      *zap.Logger
}

// Option 配置项
type Option func(*Transport)

// WithValidation 是否校验应答包头与校验和（默认开启）
func WithValidation(on bool) Option {
	return func(t *Transport) { t.validate = on }
}

// WithObserver 安装交互回调
func WithObserver(fn Observer) Option {
	return func(t *Transport) { t.observe = fn }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.log = l
		}
	}
}

// New 创建收发器
func New(ch Channel, opts ...Option) *Transport {
	t := &Transport{ch: ch, validate: true, log: zap.NewNop()}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Exchange 写入一帧后阻塞读取应答，最长 timeout
// 超时无数据返回 ErrNoResponse；只收到半帧返回 fpm.ErrMalformedResponse
func (t *Transport) Exchange(frame []byte, timeout time.Duration) (*fpm.Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	code := fpm.CommandCode(frame)
	start := time.Now()

	f, err := t.exchange(frame, timeout)
	result := classify(f, err)
	if t.observe != nil {
		t.observe(code, result, time.Since(start))
	}

	if err != nil {
		t.log.Debug("sensor exchange failed",
			zap.String("cmd", fpm.CommandName(code)),
			zap.String("result", result),
			zap.Error(err))
		return nil, err
	}
	t.log.Debug("sensor exchange",
		zap.String("cmd", fpm.CommandName(code)),
		zap.Uint8("status", f.Code),
		zap.Duration("elapsed", time.Since(start)))
	return f, nil
}

func (t *Transport) exchange(frame []byte, timeout time.Duration) (*fpm.Frame, error) {
	// 丢弃上一次超时后迟到的应答
	if r, ok := t.ch.(inputResetter); ok {
		_ = r.ResetInputBuffer()
	}

	if err := t.ch.Write(frame); err != nil {
		return nil, fmt.Errorf("write frame: %w", err)
	}
	t.log.Debug("sensor tx", zap.String("hex", hex.EncodeToString(frame)))

	deadline := time.Now().Add(timeout)
	var buf []byte
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		chunk, err := t.ch.Read(readChunk, remaining)
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		if len(chunk) == 0 {
			continue
		}
		buf = resync(append(buf, chunk...))

		total, ok := fpm.FrameLength(buf)
		if !ok || len(buf) < total {
			continue
		}
		t.log.Debug("sensor rx", zap.String("hex", hex.EncodeToString(buf[:total])))
		return t.decode(buf[:total])
	}

	if len(buf) == 0 {
		return nil, ErrNoResponse
	}
	return nil, fpm.ErrMalformedResponse
}

func (t *Transport) decode(b []byte) (*fpm.Frame, error) {
	f, err := fpm.Decode(b)
	if err != nil {
		return nil, err
	}
	if !t.validate {
		return f, nil
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !f.IsAck() {
		return nil, fmt.Errorf("%w: unexpected packet id 0x%02X", ErrInvalidResponse, f.PID)
	}
	return f, nil
}

// resync 丢弃包头之前的噪声字节
func resync(buf []byte) []byte {
	for len(buf) > 0 {
		if buf[0] == fpm.Magic[0] && (len(buf) == 1 || buf[1] == fpm.Magic[1]) {
			return buf
		}
		buf = buf[1:]
	}
	return buf
}

func classify(f *fpm.Frame, err error) string {
	switch {
	case err == nil && f.Status().OK():
		return ResultOK
	case err == nil:
		return ResultStatus
	case errors.Is(err, ErrNoResponse):
		return ResultNoResponse
	case errors.Is(err, fpm.ErrMalformedResponse):
		return ResultMalformed
	case errors.Is(err, ErrInvalidResponse):
		return ResultInvalid
	default:
		return ResultIOError
	}
}
