package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

// AppMetrics 自定义业务指标
type AppMetrics struct {
	RigRequestTotal    *prometheus.CounterVec // labels: op=read|set, result=ok|error
	RigBytesReceived   prometheus.Counter
	DecodeFailTotal    prometheus.Counter     // 频率应答解析失败（可恢复）
	SyncCycleTotal     prometheus.Counter     // 同步循环周期计数
	FrequencyChanged   prometheus.Counter     // 观测到的频率变化次数
	FrequencyHz        prometheus.Gauge       // 最近一次已知频率
	StepSizeHz         prometheus.Gauge       // 当前步进大小
	PadEventTotal      *prometheus.CounterVec // labels: direction
	ControlRejectTotal prometheus.Counter     // 控制接口被限流拒绝次数
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		RigRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rig_request_total",
			Help: "Requests issued over the rig connection.",
		}, []string{"op", "result"}),
		RigBytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rig_bytes_received_total",
			Help: "Total bytes received from the rig endpoint.",
		}),
		DecodeFailTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rig_decode_fail_total",
			Help: "Frequency responses that failed to decode.",
		}),
		SyncCycleTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_cycle_total",
			Help: "Completed frequency sync cycles.",
		}),
		FrequencyChanged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_frequency_changed_total",
			Help: "Observed remote frequency changes.",
		}),
		FrequencyHz: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rig_frequency_hz",
			Help: "Last known rig frequency in Hz.",
		}),
		StepSizeHz: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rig_step_size_hz",
			Help: "Active tuning step size in Hz.",
		}),
		PadEventTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pad_event_total",
			Help: "Dispatched directional pad events.",
		}, []string{"direction"}),
		ControlRejectTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "control_rate_limited_total",
			Help: "Control API requests rejected by the rate limiter.",
		}),
	}
	reg.MustRegister(
		m.RigRequestTotal, m.RigBytesReceived, m.DecodeFailTotal,
		m.SyncCycleTotal, m.FrequencyChanged, m.FrequencyHz, m.StepSizeHz,
		m.PadEventTotal, m.ControlRejectTotal,
	)
	return m
}
