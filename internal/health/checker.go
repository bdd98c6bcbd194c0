// Package health 组件健康检查与就绪判定
package health

import (
	"context"
	"time"
)

// Status 健康状态
type Status string

const (
	StatusHealthy Status = "healthy"
	// StatusDegraded 本地开锁照常：如密码存储不可达，但密码已在启动时载入
	StatusDegraded Status = "degraded"
	// StatusUnhealthy 无法开锁，如指纹模组未初始化
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult 单个组件的检查结果，Details 放模板数等附加信息
type CheckResult struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency"`
}

// Checker 组件检查器，Check 需遵守 ctx 超时
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}
