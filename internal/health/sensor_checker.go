package health

import (
	"context"
	"time"
)

// SensorChecker 指纹模组检查：初始化完成前不就绪
type SensorChecker struct {
	ready     func() bool
	templates func() uint16
}

// NewSensorChecker 创建指纹模组检查器
func NewSensorChecker(ready func() bool, templates func() uint16) *SensorChecker {
	return &SensorChecker{ready: ready, templates: templates}
}

// Name 返回检查器名称
func (c *SensorChecker) Name() string {
	return "fingerprint_sensor"
}

// Check 执行健康检查
func (c *SensorChecker) Check(context.Context) CheckResult {
	start := time.Now()
	if !c.ready() {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "sensor not initialized",
			Latency: time.Since(start),
		}
	}
	r := CheckResult{Status: StatusHealthy, Message: "ok", Latency: time.Since(start)}
	if c.templates != nil {
		r.Details = map[string]any{"templates": c.templates()}
	}
	return r
}
