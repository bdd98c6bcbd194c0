package fingerprint

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/smart-lock/internal/protocol/fpm"
)

// enrollPhase 录入状态
type enrollPhase int

const (
	phaseCapturing  enrollPhase = iota // 采集第 index 次
	phaseMerging                       // 合并特征
	phaseCounting                      // 读当前模板数
	phaseStoring                       // 存储到 count+1
	phaseRefreshing                    // 刷新模板数缓存
)

func (p enrollPhase) String() string {
	switch p {
	case phaseCapturing:
		return "capturing"
	case phaseMerging:
		return "merging"
	case phaseCounting:
		return "counting"
	case phaseStoring:
		return "storing"
	case phaseRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// enrollment 一次录入的过程状态，录入结束即丢弃
type enrollment struct {
	phase    enrollPhase
	index    int // 1..RequiredCaptures，同时是特征缓冲区号
	deadline time.Time
	count    uint16
	retries  int // 采集失败重试次数
}

// Enroll 录入新指纹
//
// 采集阶段：GetImage 或 GenChar 失败就重试，只看距上次成功采集是否超过
// CaptureTimeout；每次成功采集后提示拿开手指并重置截止时间。
// 采集满 RequiredCaptures 次后合并、读数、存储、刷新，任一步失败即放弃。
func (c *Controller) Enroll(ctx context.Context) Outcome {
	e := &enrollment{
		phase:    phaseCapturing,
		index:    1,
		deadline: c.now().Add(CaptureTimeout),
	}
	c.log.Info("enroll started", zap.Int("captures", RequiredCaptures))

	for {
		switch e.phase {
		case phaseCapturing:
			if c.now().After(e.deadline) {
				c.log.Warn("enroll capture timeout", zap.Int("index", e.index), zap.Int("retries", e.retries))
				return OutcomeTimeout
			}
			if !c.capture(e.index) {
				e.retries++
				if err := c.pacer.Wait(ctx); err != nil {
					c.log.Warn("enroll aborted", zap.Error(err))
					return OutcomeEnrollFailed
				}
				continue
			}

			c.log.Info("enroll capture ok", zap.Int("index", e.index))
			c.prompt.LiftFinger()
			c.delay(LiftDelay)
			c.prompt.PlaceFinger()

			if e.index >= RequiredCaptures {
				e.phase = phaseMerging
				continue
			}
			e.index++
			e.deadline = c.now().Add(CaptureTimeout)

		case phaseMerging:
			if st, err := c.Merge(); !succeeded(st, err) {
				return c.enrollFailed(e, st, err)
			}
			e.phase = phaseCounting

		case phaseCounting:
			st, n, err := c.ReadValidTemplateCount()
			if !succeeded(st, err) {
				return c.enrollFailed(e, st, err)
			}
			e.count = n
			e.phase = phaseStoring

		case phaseStoring:
			if st, err := c.StoreTemplate(e.count + 1); !succeeded(st, err) {
				return c.enrollFailed(e, st, err)
			}
			e.phase = phaseRefreshing

		case phaseRefreshing:
			st, n, err := c.ReadValidTemplateCount()
			if !succeeded(st, err) {
				return c.enrollFailed(e, st, err)
			}
			c.log.Info("enroll done",
				zap.Uint16("page", e.count+1),
				zap.Uint16("templates", n),
				zap.Int("retries", e.retries))
			return OutcomeSuccess
		}
	}
}

// capture 一次采集：录入图像并生成特征到缓冲区 index
func (c *Controller) capture(index int) bool {
	if st, err := c.GetImage(); !succeeded(st, err) {
		return false
	}
	if st, err := c.GenerateCharacteristics(byte(index)); !succeeded(st, err) {
		return false
	}
	return true
}

func (c *Controller) enrollFailed(e *enrollment, st fpm.Status, err error) Outcome {
	c.log.Warn("enroll failed",
		zap.Stringer("phase", e.phase),
		zap.Int("retries", e.retries),
		statusFailure(st, err))
	return OutcomeEnrollFailed
}
