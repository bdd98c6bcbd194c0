package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taoyao-code/smart-lock/internal/protocol/fpm"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// LockMetrics 门锁业务指标；nil 接收者上的方法为空操作
type LockMetrics struct {
	UnlockTotal          *prometheus.CounterVec // labels: source=password|fingerprint
	PasswordAttemptTotal *prometheus.CounterVec // labels: result=granted|denied
	WorkflowTotal        *prometheus.CounterVec // labels: kind=enroll|identify, outcome
	SensorExchangeTotal  *prometheus.CounterVec // labels: cmd, result
	TouchDroppedTotal    prometheus.Counter
	EnrollRequestTotal   *prometheus.CounterVec // labels: result=accepted|dropped
	InputTimeoutTotal    prometheus.Counter
	FingerprintBusy      prometheus.Gauge
	SensorTemplates      prometheus.Gauge
}

// NewLockMetrics 注册并返回业务指标
func NewLockMetrics(reg prometheus.Registerer) *LockMetrics {
	m := &LockMetrics{
		UnlockTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_unlock_total",
			Help: "Unlock actuations by credential source.",
		}, []string{"source"}),
		PasswordAttemptTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_password_attempt_total",
			Help: "Completed 6-digit password attempts.",
		}, []string{"result"}),
		WorkflowTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_fingerprint_workflow_total",
			Help: "Fingerprint workflows by kind and outcome.",
		}, []string{"kind", "outcome"}),
		SensorExchangeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_sensor_exchange_total",
			Help: "Sensor request/response exchanges by command and result.",
		}, []string{"cmd", "result"}),
		TouchDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lock_touch_dropped_total",
			Help: "Finger touches ignored while a workflow was in flight.",
		}),
		EnrollRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_enroll_request_total",
			Help: "Enroll gestures by result.",
		}, []string{"result"}),
		InputTimeoutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lock_input_timeout_total",
			Help: "Partial password entries cleared by the watchdog.",
		}),
		FingerprintBusy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lock_fingerprint_busy",
			Help: "1 while a fingerprint workflow is in flight.",
		}),
		SensorTemplates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lock_sensor_templates",
			Help: "Valid templates stored on the sensor.",
		}),
	}
	reg.MustRegister(m.UnlockTotal, m.PasswordAttemptTotal, m.WorkflowTotal, m.SensorExchangeTotal,
		m.TouchDroppedTotal, m.EnrollRequestTotal, m.InputTimeoutTotal, m.FingerprintBusy, m.SensorTemplates)
	return m
}

// Unlocked 记录一次开锁
func (m *LockMetrics) Unlocked(source string) {
	if m == nil {
		return
	}
	m.UnlockTotal.WithLabelValues(source).Inc()
}

// PasswordAttempt 记录一次 6 位密码比对
func (m *LockMetrics) PasswordAttempt(result string) {
	if m == nil {
		return
	}
	m.PasswordAttemptTotal.WithLabelValues(result).Inc()
}

// Workflow 记录一次指纹流程结果
func (m *LockMetrics) Workflow(kind, outcome string) {
	if m == nil {
		return
	}
	m.WorkflowTotal.WithLabelValues(kind, outcome).Inc()
}

// SensorExchange 作为 transport.Observer 使用
func (m *LockMetrics) SensorExchange(code byte, result string, _ time.Duration) {
	if m == nil {
		return
	}
	m.SensorExchangeTotal.WithLabelValues(fpm.CommandName(code), result).Inc()
}

// TouchDropped 忙碌期间丢弃的触摸
func (m *LockMetrics) TouchDropped() {
	if m == nil {
		return
	}
	m.TouchDroppedTotal.Inc()
}

// EnrollRequest 录入手势结果
func (m *LockMetrics) EnrollRequest(result string) {
	if m == nil {
		return
	}
	m.EnrollRequestTotal.WithLabelValues(result).Inc()
}

// InputTimeout 看门狗清空
func (m *LockMetrics) InputTimeout() {
	if m == nil {
		return
	}
	m.InputTimeoutTotal.Inc()
}

// SetBusy 指纹流程忙碌标志
func (m *LockMetrics) SetBusy(busy bool) {
	if m == nil {
		return
	}
	if busy {
		m.FingerprintBusy.Set(1)
		return
	}
	m.FingerprintBusy.Set(0)
}

// SetTemplates 模组内指纹数
func (m *LockMetrics) SetTemplates(n uint16) {
	if m == nil {
		return
	}
	m.SensorTemplates.Set(float64(n))
}
