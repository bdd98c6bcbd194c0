package fingerprint

import (
	"context"

	"go.uber.org/zap"
)

// Identify 识别：录入图像、生成特征、搜索，各执行一次，不重试
// 失败由下一次按压中断重新触发
func (c *Controller) Identify(ctx context.Context) Outcome {
	if ctx.Err() != nil {
		return OutcomeFailure
	}
	if st, err := c.GetImage(); !succeeded(st, err) {
		c.log.Info("identify failed", zap.String("step", "get_image"), zap.Stringer("status", st), zap.Error(err))
		return OutcomeFailure
	}
	if st, err := c.GenerateCharacteristics(1); !succeeded(st, err) {
		c.log.Info("identify failed", zap.String("step", "gen_char"), zap.Stringer("status", st), zap.Error(err))
		return OutcomeFailure
	}
	if st, err := c.Search(); !succeeded(st, err) {
		c.log.Info("identify failed", zap.String("step", "search"), zap.Stringer("status", st), zap.Error(err))
		return OutcomeFailure
	}
	return OutcomeSuccess
}
