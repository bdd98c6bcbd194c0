// Package sim 模拟指纹模组：在串口通道层面按帧协议应答
package sim

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/taoyao-code/smart-lock/internal/notify"
	"github.com/taoyao-code/smart-lock/internal/protocol/fpm"
)

// Handler 指令处理函数，返回确认码与数据
type Handler func(code byte, params []byte) (fpm.Status, []byte)

// Sensor 模拟模组，实现 transport.Channel
type Sensor struct {
	mu       sync.Mutex
	rx       []byte
	ready    *notify.Signal
	handlers map[byte]Handler
	silent   map[byte]bool
	calls    []byte

	finger    bool
	templates uint16
	capacity  uint16
	serial    string
}

// New 创建模拟模组，默认已录入 0 个指纹、容量 100
func New() *Sensor {
	return &Sensor{
		ready:    notify.NewSignal(),
		handlers: make(map[byte]Handler),
		silent:   make(map[byte]bool),
		capacity: 100,
		serial:   "SIM-FPM-0001",
	}
}

// Handle 覆盖某条指令的应答
func (s *Sensor) Handle(code byte, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[code] = h
}

// Reply 让某条指令固定返回 status
func (s *Sensor) Reply(code byte, status fpm.Status) {
	s.Handle(code, func(byte, []byte) (fpm.Status, []byte) { return status, nil })
}

// Silence 让某条指令不应答
func (s *Sensor) Silence(code byte, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.silent[code] = on
}

// SetFinger 手指放上/拿开
func (s *Sensor) SetFinger(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finger = on
}

// SetTemplates 设置已录入模板数
func (s *Sensor) SetTemplates(n uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = n
}

// Templates 已录入模板数
func (s *Sensor) Templates() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates
}

// Calls 收到的指令码序列
func (s *Sensor) Calls() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.calls...)
}

// Count 指令收到的次数
func (s *Sensor) Count(code byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == code {
			n++
		}
	}
	return n
}

// Inject 直接向接收端注入原始字节（噪声、半帧）
func (s *Sensor) Inject(raw []byte) {
	s.mu.Lock()
	s.rx = append(s.rx, raw...)
	s.mu.Unlock()
	s.ready.Post()
}

// Write 接收一条命令帧并排队应答
func (s *Sensor) Write(p []byte) error {
	f, err := fpm.Decode(p)
	if err != nil || f.Validate() != nil {
		s.Inject(fpm.EncodeAck(fpm.StatusPacketError, nil))
		return nil
	}

	s.mu.Lock()
	s.calls = append(s.calls, f.Code)
	if s.silent[f.Code] {
		s.mu.Unlock()
		return nil
	}
	h, ok := s.handlers[f.Code]
	s.mu.Unlock()

	var status fpm.Status
	var payload []byte
	if ok {
		status, payload = h(f.Code, f.Params)
	} else {
		status, payload = s.defaultReply(f.Code, f.Params)
	}
	s.Inject(fpm.EncodeAck(status, payload))
	return nil
}

// Read 在 timeout 内读取已排队的应答字节
func (s *Sensor) Read(max int, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		s.mu.Lock()
		if len(s.rx) > 0 {
			n := min(max, len(s.rx))
			out := append([]byte(nil), s.rx[:n]...)
			s.rx = s.rx[n:]
			s.mu.Unlock()
			return out, nil
		}
		s.mu.Unlock()

		select {
		case <-s.ready.C():
		case <-timer.C:
			return nil, nil
		}
	}
}

// ResetInputBuffer 丢弃未读字节
func (s *Sensor) ResetInputBuffer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rx = nil
	return nil
}

func (s *Sensor) defaultReply(code byte, params []byte) (fpm.Status, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch code {
	case fpm.CmdGetImage:
		if !s.finger {
			return fpm.StatusNoFinger, nil
		}
		return fpm.StatusOK, nil
	case fpm.CmdGenChar:
		if !s.finger {
			return fpm.StatusNoValidImage, nil
		}
		return fpm.StatusOK, nil
	case fpm.CmdSearch:
		if s.templates == 0 {
			return fpm.StatusNotFound, nil
		}
		payload := binary.BigEndian.AppendUint16(nil, 1)
		return fpm.StatusOK, binary.BigEndian.AppendUint16(payload, 100)
	case fpm.CmdRegModel:
		return fpm.StatusOK, nil
	case fpm.CmdStoreChar:
		if len(params) < 3 {
			return fpm.StatusPacketError, nil
		}
		page := binary.BigEndian.Uint16(params[1:3])
		if page >= s.capacity {
			return fpm.StatusPageOutOfRange, nil
		}
		s.templates++
		return fpm.StatusOK, nil
	case fpm.CmdWriteReg:
		if len(params) < 2 || params[0] != fpm.RegSecurityLevel {
			return fpm.StatusRegisterIndex, nil
		}
		return fpm.StatusOK, nil
	case fpm.CmdValidTemplateNum:
		return fpm.StatusOK, binary.BigEndian.AppendUint16(nil, s.templates)
	case fpm.CmdSleep:
		return fpm.StatusOK, nil
	case fpm.CmdGetChipSN:
		sn := make([]byte, fpm.SerialNumberSize)
		copy(sn, s.serial)
		return fpm.StatusOK, sn
	default:
		return fpm.StatusPacketError, nil
	}
}
