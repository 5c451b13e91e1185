// Package metrics gom các chỉ số Prometheus của service. Mọi method đều an toàn khi receiver nil
// để service có thể chạy (và test) mà không cần metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics chứa các collector của ứng dụng, đăng ký vào registry riêng
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	upstreamRequestsTotal   *prometheus.CounterVec
	upstreamRequestDuration *prometheus.HistogramVec

	contentLifecycleTotal *prometheus.CounterVec
	rollupFailuresTotal   prometheus.Counter
	workerRunsTotal       *prometheus.CounterVec
}

// New tạo Metrics với registry riêng (kèm Go/process collector)
func New(namespace string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	m.upstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Outbound calls to the LLM and design-tool APIs by outcome",
	}, []string{"service", "outcome"})

	m.upstreamRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Outbound call duration in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
	}, []string{"service"})

	m.contentLifecycleTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_lifecycle_total",
		Help:      "Content lifecycle operations by action",
	}, []string{"action"})

	m.rollupFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analytics_rollup_failures_total",
		Help:      "Rollup recomputations that failed after a raw event append",
	})

	m.workerRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "worker_runs_total",
		Help:      "Background worker ticks by worker and result",
	}, []string{"worker", "result"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.upstreamRequestsTotal,
		m.upstreamRequestDuration,
		m.contentLifecycleTotal,
		m.rollupFailuresTotal,
		m.workerRunsTotal,
	)
	return m
}

// Handler trả về http.Handler cho /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry dùng cho test
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTP ghi nhận một request HTTP
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveUpstream ghi nhận một lần gọi LLM / design tool; outcome: ok | error | timeout
func (m *Metrics) ObserveUpstream(service, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequestsTotal.WithLabelValues(service, outcome).Inc()
	m.upstreamRequestDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// IncLifecycle đếm thao tác vòng đời nội dung (generate, publish, archive, ...)
func (m *Metrics) IncLifecycle(action string) {
	if m == nil {
		return
	}
	m.contentLifecycleTotal.WithLabelValues(action).Inc()
}

// IncRollupFailure đếm số lần recompute rollup thất bại
func (m *Metrics) IncRollupFailure() {
	if m == nil {
		return
	}
	m.rollupFailuresTotal.Inc()
}

// IncWorkerRun đếm số lần worker chạy; result: ok | error | panic
func (m *Metrics) IncWorkerRun(worker, result string) {
	if m == nil {
		return
	}
	m.workerRunsTotal.WithLabelValues(worker, result).Inc()
}
