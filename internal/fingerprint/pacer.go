package fingerprint

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer 采集重试节流：基于 Token Bucket，突发 1
type pacer struct {
	limiter *rate.Limiter
}

// newPacer interval <= 0 时不节流
func newPacer(interval time.Duration) *pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &pacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait 等待下一次重试许可
func (p *pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
