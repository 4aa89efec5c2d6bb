// Package metrics exposes wallet activity to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/txn"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "evm_wallet"

// Metrics implements txn.Recorder and instruments HTTP handlers
type Metrics struct {
	registry *prometheus.Registry

	submitted    *prometheus.CounterVec
	confirmed    *prometheus.CounterVec
	failed       *prometheus.CounterVec
	confirmWait  *prometheus.HistogramVec
	requests     *prometheus.CounterVec
	requestTimes *prometheus.HistogramVec
}

var _ txn.Recorder = (*Metrics)(nil)

// New registers the wallet collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		submitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "submitted_total",
			Help:      "Transactions accepted by the node",
		}, []string{"kind"}),
		confirmed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "confirmed_total",
			Help:      "Transactions mined with success status",
		}, []string{"kind"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "failed_total",
			Help:      "Transactions that failed after signing, by failure kind",
		}, []string{"kind", "reason"}),
		confirmWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "confirmation_seconds",
			Help:      "Time from submission to a successful receipt",
			Buckets:   []float64{1, 2, 5, 10, 15, 30, 60, 120, 300},
		}, []string{"kind"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		}, []string{"method", "path", "status"}),
		requestTimes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 120},
		}, []string{"method", "path"}),
	}
}

func (m *Metrics) Submitted(kind txn.Kind) {
	m.submitted.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) Confirmed(kind txn.Kind, wait time.Duration) {
	m.confirmed.WithLabelValues(string(kind)).Inc()
	m.confirmWait.WithLabelValues(string(kind)).Observe(wait.Seconds())
}

func (m *Metrics) Failed(kind txn.Kind, reason werr.Kind) {
	if reason == "" {
		reason = "UNKNOWN"
	}
	m.failed.WithLabelValues(string(kind), string(reason)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests per route pattern. Use the mux pattern, not
// the raw path, to keep label cardinality bounded.
func (m *Metrics) Middleware(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.requests.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		m.requestTimes.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
