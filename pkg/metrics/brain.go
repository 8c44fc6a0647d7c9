package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"healthbrain/common/model"
	"healthbrain/internal/business/brain"
)

const namespace = "brain"

// BrainMetrics 体检引擎的 Prometheus 指标
type BrainMetrics struct {
	runs              *prometheus.CounterVec
	runDuration       prometheus.Histogram
	healthScore       prometheus.Gauge
	actions           *prometheus.CounterVec
	ruleFailures      *prometheus.CounterVec
	remediatedRows    *prometheus.CounterVec
	narrativeFallback prometheus.Counter
	httpRequests      *prometheus.CounterVec
	jobs              *prometheus.CounterVec
}

var _ brain.Recorder = (*BrainMetrics)(nil)

// NewBrainMetrics 创建并注册指标
func NewBrainMetrics(reg prometheus.Registerer) *BrainMetrics {
	m := &BrainMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of health check runs by outcome",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of health check runs",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
		healthScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "health_score",
			Help:      "Health score of the latest report",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Actions emitted by type and severity",
		}, []string{"type", "severity"}),
		ruleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_failures_total",
			Help:      "Rules that failed during evaluation",
		}, []string{"rule"}),
		remediatedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remediated_rows_total",
			Help:      "Rows changed by auto-fix mutations",
		}, []string{"mutation"}),
		narrativeFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narrative_fallbacks_total",
			Help:      "Reports that used the deterministic summary after a narrator failure",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Queue jobs processed by action type and status",
		}, []string{"action_type", "status"}),
	}

	reg.MustRegister(
		m.runs,
		m.runDuration,
		m.healthScore,
		m.actions,
		m.ruleFailures,
		m.remediatedRows,
		m.narrativeFallback,
		m.httpRequests,
		m.jobs,
	)
	return m
}

// ObserveRun 记录一次运行
func (m *BrainMetrics) ObserveRun(outcome string, d time.Duration) {
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(d.Seconds())
}

// ObserveReport 记录报告分数与 action 分布
func (m *BrainMetrics) ObserveReport(r *model.Report) {
	m.healthScore.Set(float64(r.HealthScore))
	for _, a := range r.Actions {
		m.actions.WithLabelValues(string(a.Type), string(a.Severity)).Inc()
	}
}

func (m *BrainMetrics) RuleFailed(rule string) {
	m.ruleFailures.WithLabelValues(rule).Inc()
}

func (m *BrainMetrics) Remediated(mutation string, rows int64) {
	m.remediatedRows.WithLabelValues(mutation).Add(float64(rows))
}

func (m *BrainMetrics) NarrativeFallback() {
	m.narrativeFallback.Inc()
}

// ObserveHTTP 记录 HTTP 请求
func (m *BrainMetrics) ObserveHTTP(route string, code int) {
	m.httpRequests.WithLabelValues(route, statusText(code)).Inc()
}

// ObserveJob 记录队列任务处理结果
func (m *BrainMetrics) ObserveJob(actionType, status string) {
	m.jobs.WithLabelValues(actionType, status).Inc()
}

func statusText(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
