package hal

import (
	"time"

	"go.uber.org/zap"
)

// LogMotor 只记日志的电机
type LogMotor struct{ Log *zap.Logger }

func (m LogMotor) Drive(d Direction) {
	m.Log.Info("motor drive", zap.Stringer("direction", d))
}

// LogAudio 只记日志的语音模块
type LogAudio struct{ Log *zap.Logger }

func (a LogAudio) PlayTone(code uint8) {
	a.Log.Info("play tone", zap.Uint8("code", code))
}

// LogIndicator 只记日志的指示灯
type LogIndicator struct{ Log *zap.Logger }

func (i LogIndicator) SetKeyIndicator(index int, c Color, brightness uint8, d time.Duration) {
	i.Log.Debug("key indicator",
		zap.Int("index", index),
		zap.Uint8("r", c.R), zap.Uint8("g", c.G), zap.Uint8("b", c.B),
		zap.Uint8("brightness", brightness),
		zap.Duration("duration", d))
}
