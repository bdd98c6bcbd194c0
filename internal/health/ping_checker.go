package health

import (
	"context"
	"fmt"
	"time"
)

// Pinger 可探活的外部依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker 密码存储等外部依赖的探活检查
// 探活失败只算降级：密码已在启动时载入，开锁不受影响
type PingChecker struct {
	name    string
	pinger  Pinger
	timeout time.Duration
}

// NewPingChecker 创建探活检查器
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p, timeout: 2 * time.Second}
}

// Name 返回检查器名称
func (c *PingChecker) Name() string {
	return c.name
}

// Check 执行健康检查
func (c *PingChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.pinger.Ping(ctx); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}
	return CheckResult{Status: StatusHealthy, Message: "ok", Latency: time.Since(start)}
}
