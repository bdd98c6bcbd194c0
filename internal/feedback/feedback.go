// Package feedback 声光反馈
//
// 提示音同步播放；指示灯状态投递到单槽覆盖邮箱，由灯光任务渲染，
// 渲染前被覆盖的状态直接丢失，只影响显示效果。
package feedback

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/smart-lock/internal/hal"
	"github.com/taoyao-code/smart-lock/internal/notify"
)

// AllKeys 点亮全部按键指示灯
const AllKeys = -1

const defaultBrightness uint8 = 50

// Indication 一次指示灯显示
type Indication struct {
	Index      int
	Color      hal.Color
	Brightness uint8
	Duration   time.Duration
}

// Feedback 声光反馈服务
type Feedback struct {
	audio     hal.Audio
	indicator hal.Indicator
	tones     *ToneMap
	box       *notify.Mailbox[Indication]
	log       *zap.Logger
}

// New 创建反馈服务，tones 为空时使用默认曲目表
func New(audio hal.Audio, indicator hal.Indicator, tones *ToneMap, log *zap.Logger) *Feedback {
	if tones == nil {
		tones = DefaultToneMap()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Feedback{
		audio:     audio,
		indicator: indicator,
		tones:     tones,
		box:       notify.NewMailbox[Indication](),
		log:       log,
	}
}

// KeyPressed 按键音 + 对应按键灯
func (f *Feedback) KeyPressed(k hal.Key) {
	if k.Index() < 0 {
		return
	}
	f.play(EventKey)
	f.show(Indication{Index: k.Index(), Color: hal.ColorWhite, Brightness: defaultBrightness, Duration: 300 * time.Millisecond})
}

// Granted 开锁提示
func (f *Feedback) Granted() {
	f.play(EventGranted)
	f.show(Indication{Index: AllKeys, Color: hal.ColorGreen, Brightness: defaultBrightness, Duration: time.Second})
}

// Denied 拒绝提示
func (f *Feedback) Denied() {
	f.play(EventDenied)
	f.show(Indication{Index: AllKeys, Color: hal.ColorRed, Brightness: defaultBrightness, Duration: time.Second})
}

// EnrollRequested 进入录入提示
func (f *Feedback) EnrollRequested() {
	f.play(EventEnroll)
	f.show(Indication{Index: AllKeys, Color: hal.ColorBlue, Brightness: defaultBrightness, Duration: time.Second})
}

// LiftFinger 请拿开手指
func (f *Feedback) LiftFinger() {
	f.play(EventLift)
}

// PlaceFinger 请再次放置手指
func (f *Feedback) PlaceFinger() {
	f.play(EventPlace)
}

// Run 灯光任务：渲染最新的指示状态
func (f *Feedback) Run(ctx context.Context) error {
	for {
		ind, err := f.box.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		f.render(ind)
	}
}

func (f *Feedback) play(event string) {
	code, ok := f.tones.Tone(event)
	if !ok {
		f.log.Debug("no tone for event", zap.String("event", event))
		return
	}
	f.audio.PlayTone(code)
}

func (f *Feedback) show(ind Indication) {
	if f.box.Post(ind) {
		f.log.Debug("indication overwritten before render")
	}
}

func (f *Feedback) render(ind Indication) {
	if ind.Index != AllKeys {
		f.indicator.SetKeyIndicator(ind.Index, ind.Color, ind.Brightness, ind.Duration)
		return
	}
	for i := 0; i < hal.KeyCount; i++ {
		f.indicator.SetKeyIndicator(i, ind.Color, ind.Brightness, ind.Duration)
	}
}
