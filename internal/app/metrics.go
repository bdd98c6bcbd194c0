package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taoyao-code/smart-lock/internal/metrics"
)

// NewMetrics 初始化注册表与门锁指标
func NewMetrics() (*prometheus.Registry, *metrics.LockMetrics) {
	reg := metrics.NewRegistry()
	return reg, metrics.NewLockMetrics(reg)
}
