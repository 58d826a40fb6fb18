package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bala2207022/face-attendance/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the recognition pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	recognitions    *prometheus.CounterVec
	checkIns        *prometheus.CounterVec
	extractDuration *prometheus.HistogramVec
	matchDuration   prometheus.Histogram
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	recognitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recognition_outcomes_total",
		Help: "Recognition attempts grouped by outcome",
	}, []string{"outcome"})

	checkIns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_outcomes_total",
		Help: "Check-in attempts grouped by ledger outcome",
	}, []string{"outcome"})

	extractDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "embedding_extract_duration_seconds",
		Help:    "Latency of embedding extraction per backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"extractor"})

	matchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "template_match_duration_seconds",
		Help:    "Latency of nearest-template resolution",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, recognitions, checkIns, extractDuration, matchDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		recognitions:    recognitions,
		checkIns:        checkIns,
		extractDuration: extractDuration,
		matchDuration:   matchDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records per-route request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordRecognition counts one recognition attempt by outcome. Matched
// probes are counted under "MATCHED".
func (m *MetricsService) RecordRecognition(outcome models.Outcome) {
	if m == nil {
		return
	}
	label := string(outcome)
	if label == "" {
		label = "MATCHED"
	}
	m.recognitions.WithLabelValues(label).Inc()
}

// RecordCheckIn counts one check-in attempt by ledger outcome.
func (m *MetricsService) RecordCheckIn(outcome models.Outcome) {
	if m == nil {
		return
	}
	m.checkIns.WithLabelValues(string(outcome)).Inc()
}

// ObserveExtraction records embedding extraction latency per backend.
func (m *MetricsService) ObserveExtraction(extractor string, duration time.Duration) {
	if m == nil {
		return
	}
	m.extractDuration.WithLabelValues(extractor).Observe(duration.Seconds())
}

// ObserveMatch records nearest-template resolution latency.
func (m *MetricsService) ObserveMatch(duration time.Duration) {
	if m == nil {
		return
	}
	m.matchDuration.Observe(duration.Seconds())
}
