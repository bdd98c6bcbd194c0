// Package hal 外设接口：键盘、电机、音频、按键指示灯
//
// 实际板级驱动（I2C 键盘扫描、H 桥 GPIO、单线音频、RMT 灯带）不在本仓库，
// 这里只定义控制核心依赖的契约以及在主机上运行用的替身实现。
package hal

import (
	"fmt"
	"time"
)

// Key 键值
type Key int8

const (
	KeyNone Key = -1
	Key0    Key = 0
	Key1    Key = 1
	Key2    Key = 2
	Key3    Key = 3
	Key4    Key = 4
	Key5    Key = 5
	Key6    Key = 6
	Key7    Key = 7
	Key8    Key = 8
	Key9    Key = 9
	KeyStar Key = 10 // '*'
	KeyHash Key = 11 // '#'，录入触发键
)

// KeyCount 键盘按键数（同时也是指示灯数量）
const KeyCount = 12

// IsDigit 是否为数字键
func (k Key) IsDigit() bool {
	return k >= Key0 && k <= Key9
}

// ASCII 数字键对应的 ASCII 字符
func (k Key) ASCII() byte {
	switch {
	case k.IsDigit():
		return '0' + byte(k)
	case k == KeyStar:
		return '*'
	case k == KeyHash:
		return '#'
	default:
		return 0
	}
}

// Index 指示灯序号，KeyNone 返回 -1
func (k Key) Index() int {
	if k < 0 || k >= KeyCount {
		return -1
	}
	return int(k)
}

func (k Key) String() string {
	if c := k.ASCII(); c != 0 {
		return string(c)
	}
	return "none"
}

// ParseKey 字符转键值
func ParseKey(r rune) Key {
	switch {
	case r >= '0' && r <= '9':
		return Key(r - '0')
	case r == '*':
		return KeyStar
	case r == '#':
		return KeyHash
	default:
		return KeyNone
	}
}

// Keypad 键盘读取，没有按键时返回 KeyNone
type Keypad interface {
	ReadKey() Key
}

// Direction 电机驱动方向
type Direction int

const (
	Brake   Direction = iota // 两路同电平，停止
	Forward                  // 正转
	Reverse                  // 反转
)

func (d Direction) String() string {
	switch d {
	case Brake:
		return "brake"
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Motor 锁电机 H 桥
type Motor interface {
	Drive(d Direction)
}

// Audio 语音模块，按提示音编号播放，无应答
type Audio interface {
	PlayTone(code uint8)
}

// Color 指示灯颜色
type Color struct {
	R, G, B uint8
}

var (
	ColorOff   = Color{}
	ColorWhite = Color{R: 255, G: 255, B: 255}
	ColorGreen = Color{G: 255}
	ColorRed   = Color{R: 255}
	ColorBlue  = Color{B: 255}
)

// Indicator 按键指示灯
type Indicator interface {
	SetKeyIndicator(index int, c Color, brightness uint8, d time.Duration)
}
