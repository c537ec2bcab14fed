package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	turnsTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	tokensTotal   *prometheus.CounterVec
	ratingsTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hrag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hrag",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hrag",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hrag",
			Subsystem: "pipeline",
			Name:      "turns_total",
			Help:      "Total completed query turns by classification.",
		},
		[]string{"service", "classification"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hrag",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage pipeline latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "stage"},
	)
	tokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hrag",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Total tokens consumed by completed turns.",
		},
		[]string{"service"},
	)
	ratingsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hrag",
			Subsystem: "feedback",
			Name:      "ratings_total",
			Help:      "Total feedback ratings by value.",
		},
		[]string{"service", "rating"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		turnsTotal,
		stageDuration,
		tokensTotal,
		ratingsTotal,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		turnsTotal:      turnsTotal,
		stageDuration:   stageDuration,
		tokensTotal:     tokensTotal,
		ratingsTotal:    ratingsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// TurnRecorder adapts the metrics registry to the chat service's observer
// hook, bound to one service label.
type TurnRecorder struct {
	metrics *HTTPServerMetrics
	service string
}

func (m *HTTPServerMetrics) TurnRecorder(service string) *TurnRecorder {
	return &TurnRecorder{metrics: m, service: service}
}

func (r *TurnRecorder) ObserveTurn(record domain.TelemetryRecord) {
	m := r.metrics
	m.turnsTotal.WithLabelValues(r.service, string(record.Classification)).Inc()
	m.stageDuration.WithLabelValues(r.service, "reword").Observe(record.RewordTime.Seconds())
	m.stageDuration.WithLabelValues(r.service, "rag").Observe(record.RAGTime.Seconds())
	m.stageDuration.WithLabelValues(r.service, "generation").Observe(record.GenerationTime.Seconds())
	m.stageDuration.WithLabelValues(r.service, "full").Observe(record.FullTime.Seconds())
	if record.UsedTokens > 0 {
		m.tokensTotal.WithLabelValues(r.service).Add(float64(record.UsedTokens))
	}
}

func (m *HTTPServerMetrics) RecordRating(service string, rating int) {
	m.ratingsTotal.WithLabelValues(service, strconv.Itoa(rating)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
