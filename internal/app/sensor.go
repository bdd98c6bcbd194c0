package app

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/smart-lock/internal/config"
	"github.com/taoyao-code/smart-lock/internal/sim"
	"github.com/taoyao-code/smart-lock/internal/transport"
)

// OpenSensorChannel 打开指纹模组串口；serial.port 为 sim 时使用内置模拟模组
func OpenSensorChannel(cfg cfgpkg.SerialConfig, log *zap.Logger) (transport.Channel, *sim.Sensor, func(), error) {
	if cfg.Port == cfgpkg.SerialSim {
		s := sim.New()
		log.Warn("using simulated fingerprint sensor")
		return s, s, func() {}, nil
	}
	ch, err := transport.OpenSerial(cfg.Port, cfg.Baud)
	if err != nil {
		return nil, nil, func() {}, err
	}
	log.Info("serial port opened", zap.String("port", cfg.Port), zap.Int("baud", cfg.Baud))
	return ch, nil, func() { _ = ch.Close() }, nil
}
