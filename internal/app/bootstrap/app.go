package bootstrap

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/smart-lock/internal/access"
	"github.com/taoyao-code/smart-lock/internal/app"
	cfgpkg "github.com/taoyao-code/smart-lock/internal/config"
	"github.com/taoyao-code/smart-lock/internal/feedback"
	"github.com/taoyao-code/smart-lock/internal/fingerprint"
	"github.com/taoyao-code/smart-lock/internal/hal"
	"github.com/taoyao-code/smart-lock/internal/health"
	"github.com/taoyao-code/smart-lock/internal/httpserver"
	"github.com/taoyao-code/smart-lock/internal/lock"
	"github.com/taoyao-code/smart-lock/internal/logging"
	"github.com/taoyao-code/smart-lock/internal/metrics"
	"github.com/taoyao-code/smart-lock/internal/sim"
	"github.com/taoyao-code/smart-lock/internal/storage"
	"github.com/taoyao-code/smart-lock/internal/transport"
)

// App 组装好的门锁控制器
type App struct {
	cfg *cfgpkg.Config
	log *zap.Logger

	Access      *access.Controller
	Fingerprint *fingerprint.Controller
	Actuator    *lock.Actuator
	Feedback    *feedback.Feedback
	Credentials *storage.Credentials
	Keypad      *hal.LineKeypad
	Sensor      *sim.Sensor // 仅 serial.port=sim 时非空

	health     *health.Aggregator
	httpSrv    *httpserver.Server
	ready      atomic.Bool
	lastUnlock atomic.Int64
	closers    []func()
}

// Status /status 快照
type Status struct {
	State         string     `json:"state"`
	Ready         bool       `json:"ready"`
	FingerBusy    bool       `json:"finger_busy"`
	EnrollPending bool       `json:"enroll_pending"`
	Templates     uint16     `json:"templates"`
	SensorSerial  string     `json:"sensor_serial"`
	Unlocks       int64      `json:"unlocks"`
	Unlocking     bool       `json:"unlocking"`
	LastUnlock    *time.Time `json:"last_unlock,omitempty"`
}

// New 按依赖顺序创建全部组件；失败时已打开的资源会被关闭
func New(ctx context.Context, cfg *cfgpkg.Config, log *zap.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// ========== 阶段1: 指标 ==========
	reg, lm := app.NewMetrics()

	// ========== 阶段2: 密码存储 ==========
	kv, closeKV, err := app.OpenStore(ctx, cfg.Storage, logging.Component(log, "storage"))
	a.closers = append(a.closers, closeKV)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.Credentials = storage.NewCredentials(kv, logging.Component(log, "storage"))
	if err := a.Credentials.EnsureDefault(ctx); err != nil {
		return nil, err
	}
	pw, err := a.Credentials.Load(ctx)
	if err != nil {
		return nil, err
	}

	// ========== 阶段3: 指纹模组 ==========
	ch, simSensor, closeCh, err := app.OpenSensorChannel(cfg.Serial, log)
	a.closers = append(a.closers, closeCh)
	if err != nil {
		return nil, fmt.Errorf("open sensor: %w", err)
	}
	a.Sensor = simSensor
	tr := transport.New(ch,
		transport.WithValidation(cfg.Sensor.ValidateResponses),
		transport.WithObserver(lm.SensorExchange),
		transport.WithLogger(logging.Component(log, "transport")))

	// ========== 阶段4: 声光反馈与执行器 ==========
	tones := feedback.DefaultToneMap()
	if cfg.Feedback.ToneMapPath != "" {
		if tm, e := feedback.LoadToneMap(cfg.Feedback.ToneMapPath); e == nil {
			tones = tm
			log.Info("tone map loaded", zap.String("path", cfg.Feedback.ToneMapPath))
		} else {
			log.Warn("load tone map failed", zap.Error(e))
		}
	}
	fbLog := logging.Component(log, "feedback")
	a.Feedback = feedback.New(hal.LogAudio{Log: fbLog}, hal.LogIndicator{Log: fbLog}, tones, fbLog)

	a.Actuator = lock.NewActuator(hal.LogMotor{Log: logging.Component(log, "motor")},
		lock.WithLogger(logging.Component(log, "lock")),
		lock.WithUnlockHook(func() { a.lastUnlock.Store(time.Now().UnixNano()) }))

	a.Fingerprint = fingerprint.New(tr,
		fingerprint.WithLogger(logging.Component(log, "fingerprint")),
		fingerprint.WithPrompter(a.Feedback),
		fingerprint.WithRetryInterval(cfg.Sensor.RetryInterval),
		fingerprint.WithTemplateObserver(lm.SetTemplates))

	// ========== 阶段5: 门禁状态机 ==========
	a.Keypad = hal.NewLineKeypad(os.Stdin, logging.Component(log, "keypad"))
	cc := access.NewControllerContext(pw, time.Now)
	a.Access = access.NewController(cc, a.Keypad, a.Fingerprint, a.Actuator,
		access.WithFeedback(a.Feedback),
		access.WithMetrics(lm),
		access.WithLogger(logging.Component(log, "access")))
	a.Keypad.OnInterrupt(a.Access.KeypadInterrupt)
	a.Keypad.OnTouch(a.touch)

	// ========== 阶段6: 健康检查与诊断 HTTP ==========
	a.health = health.NewAggregator(health.NewSensorChecker(a.ready.Load, a.Fingerprint.TemplateCount))
	if p, ok := kv.(health.Pinger); ok {
		a.health.AddChecker(health.NewPingChecker(cfg.Storage.Driver, p))
	}
	if cfg.HTTP.Enable {
		opts := httpserver.Options{
			Health: a.health,
			Status: func() any { return a.Status() },
		}
		if cfg.Metrics.Enable {
			opts.MetricsPath = cfg.Metrics.Path
			opts.MetricsHandler = metrics.Handler(reg)
		}
		a.httpSrv = httpserver.New(cfg.HTTP, opts)
	}
	return a, nil
}

// touch 主机输入的指纹按压：模拟模组上放置手指并触发中断
func (a *App) touch() {
	if a.Sensor != nil {
		a.Sensor.SetFinger(true)
	}
	if !a.Access.FingerTouchInterrupt() {
		a.log.Debug("touch ignored, fingerprint busy")
	}
}

// ChangePassword 修改开锁密码，写入存储后立即生效
func (a *App) ChangePassword(ctx context.Context, pw string) error {
	return a.Access.ChangePassword(ctx, a.Credentials, pw)
}

// Ready 指纹模组初始化完成
func (a *App) Ready() bool {
	return a.ready.Load()
}

// Status 当前状态快照
func (a *App) Status() Status {
	s := Status{
		State:         a.Access.State().String(),
		Ready:         a.ready.Load(),
		FingerBusy:    a.Access.Context().Busy(),
		EnrollPending: a.Access.Context().EnrollPending(),
		Templates:     a.Fingerprint.TemplateCount(),
		SensorSerial:  a.Fingerprint.SerialNumber(),
		Unlocks:       a.Actuator.Count(),
		Unlocking:     a.Actuator.Active(),
	}
	if ns := a.lastUnlock.Load(); ns > 0 {
		t := time.Unix(0, ns)
		s.LastUnlock = &t
	}
	return s
}

// Run 初始化模组后启动全部任务，ctx 结束时优雅退出
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting smart-lock", zap.String("env", a.cfg.App.Env))

	var wg sync.WaitGroup
	goTask := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				a.log.Error("task exited", zap.String("task", name), zap.Error(err))
			}
		}()
	}

	if a.httpSrv != nil {
		go func() {
			if err := a.httpSrv.Start(); err != nil {
				a.log.Error("http server error", zap.Error(err))
			}
		}()
		a.log.Info("http server started", zap.String("addr", a.cfg.HTTP.Addr))
	}

	if err := a.Fingerprint.Initialize(ctx); err != nil {
		a.shutdownHTTP()
		return nil
	}
	a.ready.Store(true)

	goTask("feedback", a.Feedback.Run)
	goTask("access", a.Access.Run)
	if a.cfg.Keypad.Source == "stdin" {
		// 读 stdin 阻塞不受 ctx 控制，不纳入等待
		go func() {
			if err := a.Keypad.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Error("keypad input error", zap.Error(err))
			}
		}()
	}
	a.log.Info("all tasks started, waiting for input")

	<-ctx.Done()
	a.log.Info("shutting down")
	a.shutdownHTTP()
	wg.Wait()
	a.log.Info("shutdown complete")
	return nil
}

func (a *App) shutdownHTTP() {
	if a.httpSrv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpSrv.Shutdown(ctx)
}

// Close 释放存储与串口
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
