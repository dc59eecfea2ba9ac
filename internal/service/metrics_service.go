package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the
// attendance engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	batchDuration   prometheus.Observer
	batchSize       prometheus.Histogram
	computeFailures prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers the engine's Prometheus collectors.
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

	batchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_batch_compute_seconds",
		Help:    "Wall time spent recomputing a daily batch",
		Buckets: prometheus.DefBuckets,
	})

	batchSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_batch_recomputed_employees",
		Help:    "Employees recomputed per daily batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})

	computeFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_compute_failures_total",
		Help: "Per-employee computation failures degraded to cached or absent rows",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_cache_hits_total",
		Help: "Batch response cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_cache_misses_total",
		Help: "Batch response cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, batchDuration, batchSize, computeFailures, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		batchDuration:   batchDuration,
		batchSize:       batchSize,
		computeFailures: computeFailures,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the /metrics endpoint handler.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// RecordHTTPRequest tracks one completed HTTP request.
func (s *MetricsService) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	s.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveBatchCompute tracks one batch recompute pass.
func (s *MetricsService) ObserveBatchCompute(recomputed int, duration time.Duration) {
	s.batchDuration.Observe(duration.Seconds())
	s.batchSize.Observe(float64(recomputed))
}

// RecordComputeFailure counts a degraded per-employee computation.
func (s *MetricsService) RecordComputeFailure() {
	s.computeFailures.Inc()
}

// RecordCacheLookup counts a response-cache hit or miss.
func (s *MetricsService) RecordCacheLookup(hit bool) {
	if hit {
		s.cacheHits.Inc()
		return
	}
	s.cacheMisses.Inc()
}
