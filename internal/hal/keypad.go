package hal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
)

// LineKeypad 从文本流读取按键（每个字符一个键），每键触发一次中断回调
// 用于没有键盘硬件时在主机上驱动控制器
type LineKeypad struct {
	mu        sync.Mutex
	queue     []Key
	r         io.Reader
	interrupt func()
	touch     func()
	log       *zap.Logger
}

// TouchRune 输入中代表一次指纹按压的字符
const TouchRune = 'f'

// NewLineKeypad 创建文本键盘
func NewLineKeypad(r io.Reader, log *zap.Logger) *LineKeypad {
	if log == nil {
		log = zap.NewNop()
	}
	return &LineKeypad{r: r, log: log}
}

// OnInterrupt 安装按键中断回调（只允许做非阻塞通知）
func (k *LineKeypad) OnInterrupt(fn func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.interrupt = fn
}

// OnTouch 安装指纹按压回调，输入 TouchRune 时触发
func (k *LineKeypad) OnTouch(fn func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.touch = fn
}

// Press 模拟一次按键
func (k *LineKeypad) Press(key Key) {
	k.mu.Lock()
	k.queue = append(k.queue, key)
	fn := k.interrupt
	k.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// ReadKey 取出最早的按键
func (k *LineKeypad) ReadKey() Key {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.queue) == 0 {
		return KeyNone
	}
	key := k.queue[0]
	k.queue = k.queue[1:]
	return key
}

// Run 读取输入直到 EOF 或 ctx 结束
func (k *LineKeypad) Run(ctx context.Context) error {
	br := bufio.NewReader(k.r)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r, _, err := br.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				k.log.Info("keypad input closed")
				return nil
			}
			return err
		}
		if r == TouchRune {
			k.mu.Lock()
			fn := k.touch
			k.mu.Unlock()
			if fn != nil {
				fn()
			}
			continue
		}
		key := ParseKey(r)
		if key == KeyNone {
			continue
		}
		k.Press(key)
	}
}
