package transport

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Channel 串口通道
// Read 在 timeout 内读取最多 max 字节，超时返回空切片而不是错误
type Channel interface {
	Write(p []byte) error
	Read(max int, timeout time.Duration) ([]byte, error)
}

// inputResetter 支持清空接收缓冲区的通道
type inputResetter interface {
	ResetInputBuffer() error
}

// DefaultBaudRate 指纹模组默认波特率
const DefaultBaudRate = 57600

// SerialChannel 基于 go.bug.st/serial 的 UART 通道
type SerialChannel struct {
	port serial.Port
}

// OpenSerial 打开串口，8N1 无流控
func OpenSerial(name string, baud int) (*SerialChannel, error) {
	if name == "" {
		return nil, errors.New("serial port name is empty")
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return &SerialChannel{port: port}, nil
}

// Write 写入全部字节
func (c *SerialChannel) Write(p []byte) error {
	for len(p) > 0 {
		n, err := c.port.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// Read 读取一次，超时返回空
func (c *SerialChannel) Read(max int, timeout time.Duration) ([]byte, error) {
	if err := c.port.SetReadTimeout(timeout); err != nil {
		return nil, err
	}
	buf := make([]byte, max)
	n, err := c.port.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// ResetInputBuffer 丢弃接收缓冲区残留数据
func (c *SerialChannel) ResetInputBuffer() error {
	return c.port.ResetInputBuffer()
}

// Close 关闭串口
func (c *SerialChannel) Close() error {
	return c.port.Close()
}
