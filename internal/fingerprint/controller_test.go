package fingerprint

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taoyao-code/smart-lock/internal/protocol/fpm"
	"github.com/taoyao-code/smart-lock/internal/sim"
	"github.com/taoyao-code/smart-lock/internal/transport"
)

// fakeClock 手动推进的时钟
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type countingPrompter struct {
	lift, place int
}

func (p *countingPrompter) LiftFinger()  { p.lift++ }
func (p *countingPrompter) PlaceFinger() { p.place++ }

func newTestController(t *testing.T, sensor *sim.Sensor, clock *fakeClock, opts ...Option) *Controller {
	t.Helper()
	base := []Option{
		WithClock(clock.Now, func(d time.Duration) { clock.Advance(d) }),
		WithRetryInterval(0),
	}
	return New(transport.New(sensor), append(base, opts...)...)
}

func TestInitialize(t *testing.T) {
	sensor := sim.New()
	sensor.SetTemplates(5)
	var observed []uint16
	c := newTestController(t, sensor, newFakeClock(), WithTemplateObserver(func(n uint16) { observed = append(observed, n) }))

	require.NoError(t, c.Initialize(context.Background()))

	assert.Equal(t, []byte{fpm.CmdGetChipSN, fpm.CmdWriteReg, fpm.CmdValidTemplateNum, fpm.CmdSleep}, sensor.Calls())
	assert.Equal(t, "SIM-FPM-0001", c.SerialNumber())
	assert.Equal(t, uint16(5), c.TemplateCount())
	assert.Equal(t, []uint16{5}, observed)
}

func TestSleepUntilAck_Retries(t *testing.T) {
	sensor := sim.New()
	n := 0
	sensor.Handle(fpm.CmdSleep, func(byte, []byte) (fpm.Status, []byte) {
		n++
		if n < 3 {
			return fpm.StatusPacketError, nil
		}
		return fpm.StatusOK, nil
	})
	c := newTestController(t, sensor, newFakeClock())

	require.NoError(t, c.SleepUntilAck(context.Background()))
	assert.Equal(t, 3, sensor.Count(fpm.CmdSleep))
}

func TestSleepUntilAck_Cancelled(t *testing.T) {
	sensor := sim.New()
	sensor.Reply(fpm.CmdSleep, fpm.StatusPacketError)
	c := newTestController(t, sensor, newFakeClock())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.SleepUntilAck(ctx), context.DeadlineExceeded)
}

func TestEnroll_Success(t *testing.T) {
	sensor := sim.New()
	sensor.SetFinger(true)
	sensor.SetTemplates(2)

	var buffers []byte
	sensor.Handle(fpm.CmdGenChar, func(_ byte, params []byte) (fpm.Status, []byte) {
		buffers = append(buffers, params[0])
		return fpm.StatusOK, nil
	})
	var pages []uint16
	sensor.Handle(fpm.CmdStoreChar, func(_ byte, params []byte) (fpm.Status, []byte) {
		pages = append(pages, uint16(params[1])<<8|uint16(params[2]))
		sensor.SetTemplates(3)
		return fpm.StatusOK, nil
	})

	prompt := &countingPrompter{}
	c := newTestController(t, sensor, newFakeClock(), WithPrompter(prompt))

	out := c.Enroll(context.Background())
	require.Equal(t, OutcomeSuccess, out)
	assert.NoError(t, out.Err())

	assert.Equal(t, []byte{1, 2, 3, 4}, buffers)
	assert.Equal(t, []uint16{3}, pages)
	assert.Equal(t, uint16(3), c.TemplateCount())
	assert.Equal(t, RequiredCaptures, prompt.lift)
	assert.Equal(t, RequiredCaptures, prompt.place)

	calls := sensor.Calls()
	assert.Equal(t, []byte{fpm.CmdRegModel, fpm.CmdValidTemplateNum, fpm.CmdStoreChar, fpm.CmdValidTemplateNum}, calls[len(calls)-4:])
}

func TestEnroll_CaptureTimeoutSkipsMerge(t *testing.T) {
	sensor := sim.New()
	clock := newFakeClock()
	sensor.Handle(fpm.CmdGetImage, func(byte, []byte) (fpm.Status, []byte) {
		clock.Advance(time.Second)
		return fpm.StatusNoFinger, nil
	})
	c := newTestController(t, sensor, clock)

	out := c.Enroll(context.Background())
	assert.Equal(t, OutcomeTimeout, out)
	assert.ErrorIs(t, out.Err(), ErrCaptureTimeout)
	assert.Zero(t, sensor.Count(fpm.CmdRegModel))
	assert.Zero(t, sensor.Count(fpm.CmdGenChar))
	// 第 6 次失败后时间超过 5 秒
	assert.Equal(t, 6, sensor.Count(fpm.CmdGetImage))
}

func TestEnroll_DeadlineResetOnlyOnCapture(t *testing.T) {
	sensor := sim.New()
	sensor.SetFinger(true)
	clock := newFakeClock()
	images := 0
	sensor.Handle(fpm.CmdGetImage, func(byte, []byte) (fpm.Status, []byte) {
		images++
		if images == 1 {
			return fpm.StatusOK, nil
		}
		clock.Advance(time.Second)
		return fpm.StatusNoFinger, nil
	})
	c := newTestController(t, sensor, clock)

	out := c.Enroll(context.Background())
	assert.Equal(t, OutcomeTimeout, out)
	assert.Equal(t, 1, sensor.Count(fpm.CmdGenChar))
	// 首次采集后 LiftDelay 不计入截止时间：重置发生在延时之后
	assert.Equal(t, 7, images)
}

func TestEnroll_GenCharFailureRecapturesImage(t *testing.T) {
	sensor := sim.New()
	sensor.SetFinger(true)
	failed := false
	sensor.Handle(fpm.CmdGenChar, func(byte, []byte) (fpm.Status, []byte) {
		if !failed {
			failed = true
			return fpm.StatusFewFeatures, nil
		}
		return fpm.StatusOK, nil
	})
	c := newTestController(t, sensor, newFakeClock())

	assert.Equal(t, OutcomeSuccess, c.Enroll(context.Background()))
	assert.Equal(t, RequiredCaptures+1, sensor.Count(fpm.CmdGetImage))
	assert.Equal(t, RequiredCaptures+1, sensor.Count(fpm.CmdGenChar))
}

func TestEnroll_PostCaptureFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(s *sim.Sensor)
		wantStore int
	}{
		{
			name:      "合并失败",
			setup:     func(s *sim.Sensor) { s.Reply(fpm.CmdRegModel, fpm.StatusMergeFailed) },
			wantStore: 0,
		},
		{
			name:      "读模板数失败",
			setup:     func(s *sim.Sensor) { s.Reply(fpm.CmdValidTemplateNum, fpm.StatusPacketError) },
			wantStore: 0,
		},
		{
			name:      "存储失败",
			setup:     func(s *sim.Sensor) { s.Reply(fpm.CmdStoreChar, fpm.StatusFlashError) },
			wantStore: 1,
		},
		{
			name:      "合并无应答",
			setup:     func(s *sim.Sensor) { s.Silence(fpm.CmdRegModel, true) },
			wantStore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sensor := sim.New()
			sensor.SetFinger(true)
			tt.setup(sensor)
			c := newTestController(t, sensor, newFakeClock())

			out := c.Enroll(context.Background())
			assert.Equal(t, OutcomeEnrollFailed, out)
			assert.ErrorIs(t, out.Err(), ErrEnrollFailed)
			assert.Equal(t, tt.wantStore, sensor.Count(fpm.CmdStoreChar))
			assert.Equal(t, 1, sensor.Count(fpm.CmdRegModel))
		})
	}
}

func TestEnroll_RefreshFailure(t *testing.T) {
	sensor := sim.New()
	sensor.SetFinger(true)
	reads := 0
	sensor.Handle(fpm.CmdValidTemplateNum, func(byte, []byte) (fpm.Status, []byte) {
		reads++
		if reads > 1 {
			return fpm.StatusPacketError, nil
		}
		return fpm.StatusOK, []byte{0x00, 0x00}
	})
	c := newTestController(t, sensor, newFakeClock())

	assert.Equal(t, OutcomeEnrollFailed, c.Enroll(context.Background()))
	assert.Equal(t, 1, sensor.Count(fpm.CmdStoreChar))
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		name      string
		finger    bool
		templates uint16
		want      Outcome
		wantCalls []byte
	}{
		{
			name:      "匹配成功",
			finger:    true,
			templates: 1,
			want:      OutcomeSuccess,
			wantCalls: []byte{fpm.CmdGetImage, fpm.CmdGenChar, fpm.CmdSearch},
		},
		{
			name:      "未找到指纹",
			finger:    true,
			templates: 0,
			want:      OutcomeFailure,
			wantCalls: []byte{fpm.CmdGetImage, fpm.CmdGenChar, fpm.CmdSearch},
		},
		{
			name:      "无手指不重试",
			finger:    false,
			templates: 1,
			want:      OutcomeFailure,
			wantCalls: []byte{fpm.CmdGetImage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sensor := sim.New()
			sensor.SetFinger(tt.finger)
			sensor.SetTemplates(tt.templates)
			c := newTestController(t, sensor, newFakeClock())

			out := c.Identify(context.Background())
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.wantCalls, sensor.Calls())
			if !out.OK() {
				assert.ErrorIs(t, out.Err(), ErrIdentifyFailed)
			}
		})
	}
}

func TestIdentify_NoResponse(t *testing.T) {
	sensor := sim.New()
	sensor.SetFinger(true)
	sensor.Silence(fpm.CmdGenChar, true)
	c := newTestController(t, sensor, newFakeClock())

	assert.Equal(t, OutcomeFailure, c.Identify(context.Background()))
	assert.Zero(t, sensor.Count(fpm.CmdSearch))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "timeout", OutcomeTimeout.String())
	assert.Equal(t, "enroll_failed", OutcomeEnrollFailed.String())
	assert.Equal(t, "failure", OutcomeFailure.String())
}

func TestCommand_NoResponseIsNotOK(t *testing.T) {
	tests := []struct {
		name string
		code byte
		call func(c *Controller) (fpm.Status, error)
	}{
		{"休眠", fpm.CmdSleep, func(c *Controller) (fpm.Status, error) { return c.Sleep() }},
		{"搜索", fpm.CmdSearch, func(c *Controller) (fpm.Status, error) { return c.Search() }},
		{"读模板数", fpm.CmdValidTemplateNum, func(c *Controller) (fpm.Status, error) {
			st, _, err := c.ReadValidTemplateCount()
			return st, err
		}},
		{"读序列号", fpm.CmdGetChipSN, func(c *Controller) (fpm.Status, error) {
			_, st, err := c.ReadSerialNumber()
			return st, err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sensor := sim.New()
			sensor.Silence(tt.code, true)
			c := newTestController(t, sensor, newFakeClock())

			st, err := tt.call(c)
			assert.ErrorIs(t, err, transport.ErrNoResponse)
			assert.Equal(t, fpm.StatusNoResponse, st)
			assert.False(t, st.OK())
		})
	}
}

func TestCommand_RejectedLogsStatusError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sensor := sim.New()
	sensor.Reply(fpm.CmdStoreChar, fpm.StatusFlashError)
	c := newTestController(t, sensor, newFakeClock(), WithLogger(zap.New(core)))

	st, err := c.StoreTemplate(1)
	require.NoError(t, err)
	assert.Equal(t, fpm.StatusFlashError, st)

	entries := logs.FilterMessage("sensor command rejected").All()
	require.Len(t, entries, 1)
	want := (&fpm.StatusError{Code: fpm.CmdStoreChar, Status: fpm.StatusFlashError}).Error()
	assert.Equal(t, want, entries[0].ContextMap()["error"])
}

func TestEnroll_LogsCaptureRetries(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sensor := sim.New()
	sensor.SetFinger(true)
	failures := 2
	sensor.Handle(fpm.CmdGenChar, func(byte, []byte) (fpm.Status, []byte) {
		if failures > 0 {
			failures--
			return fpm.StatusImageMessy, nil
		}
		return fpm.StatusOK, nil
	})
	c := newTestController(t, sensor, newFakeClock(), WithLogger(zap.New(core)))

	require.Equal(t, OutcomeSuccess, c.Enroll(context.Background()))
	entries := logs.FilterMessage("enroll done").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["retries"])
}
