package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	passDuration    prom.Histogram
	passResults     *prom.CounterVec
	dueTasks        prom.Histogram
	programErrors   prom.Counter
	notifications   *prom.CounterVec
	requestDuration *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.passDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "pmtrack",
			Name:      "pass_duration_seconds",
			Help:      "Duration of daily scheduler passes",
			Buckets:   prom.DefBuckets,
		})
		pr.passResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pmtrack",
			Name:      "pass_results_total",
			Help:      "Scheduler pass counts by outcome",
		}, []string{"result"})
		pr.dueTasks = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "pmtrack",
			Name:      "due_tasks_per_pass",
			Help:      "Number of tasks found due in a scheduler pass",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		})
		pr.programErrors = prom.NewCounter(prom.CounterOpts{
			Namespace: "pmtrack",
			Name:      "program_errors_total",
			Help:      "Programs whose evaluation failed during a pass",
		})
		pr.notifications = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pmtrack",
			Name:      "notifications_total",
			Help:      "Due-task notifications by publish outcome",
		}, []string{"result"})
		pr.requestDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pmtrack",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, path and status",
			Buckets:   prom.DefBuckets,
		}, []string{"method", "path", "status"})
		reg.MustRegister(pr.passDuration, pr.passResults, pr.dueTasks,
			pr.programErrors, pr.notifications, pr.requestDuration)
	})
	return pr
}

func (p *PrometheusRecorder) ObservePassDuration(d time.Duration) {
	if p == nil || p.passDuration == nil {
		return
	}
	p.passDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPassResult(result ResultLabel) {
	if p == nil || p.passResults == nil {
		return
	}
	p.passResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveDueTasks(n int) {
	if p == nil || p.dueTasks == nil {
		return
	}
	p.dueTasks.Observe(float64(n))
}

func (p *PrometheusRecorder) IncProgramError() {
	if p == nil || p.programErrors == nil {
		return
	}
	p.programErrors.Inc()
}

func (p *PrometheusRecorder) IncNotification(result ResultLabel) {
	if p == nil || p.notifications == nil {
		return
	}
	p.notifications.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRequestDuration(method, path string, status int, d time.Duration) {
	if p == nil || p.requestDuration == nil {
		return
	}
	p.requestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}
