package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PageSource records where a listing page was served from.
type PageSource string

const (
	PageSourceCache PageSource = "cache"
	PageSourceStore PageSource = "store"
	PageSourceError PageSource = "error"
)

// Recorder publishes Prometheus metrics for the listing cache and HTTP layer.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	cacheOperations *prometheus.CounterVec
	cacheLatency    *prometheus.HistogramVec
	pageReads       *prometheus.CounterVec
	invalidations   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

// NewRecorder builds a Recorder. A nil registry gets a dedicated one so tests
// and multiple recorders never collide on the default registerer.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	cacheOperations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobboard",
		Subsystem: "cache",
		Name:      "operations_total",
		Help:      "Key-value cache operations by outcome.",
	}, []string{"operation", "result"})

	cacheLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobboard",
		Subsystem: "cache",
		Name:      "operation_duration_seconds",
		Help:      "Latency distribution for key-value cache operations.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"operation"})

	pageReads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobboard",
		Subsystem: "listings",
		Name:      "page_reads_total",
		Help:      "Paginated listing reads by scope and source.",
	}, []string{"scope", "source"})

	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobboard",
		Subsystem: "listings",
		Name:      "invalidations_total",
		Help:      "Cache invalidation sweeps triggered by listing mutations.",
	}, []string{"result"})

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobboard",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "route", "status_code"})

	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobboard",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	reg.MustRegister(cacheOperations, cacheLatency, pageReads, invalidations, httpRequests, httpLatency)

	return &Recorder{
		gatherer:        reg,
		handler:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		cacheOperations: cacheOperations,
		cacheLatency:    cacheLatency,
		pageReads:       pageReads,
		invalidations:   invalidations,
		httpRequests:    httpRequests,
		httpLatency:     httpLatency,
	}
}

// Handler exposes the Prometheus HTTP handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return nil
	}
	return r.gatherer
}

func (r *Recorder) ObserveCacheOperation(operation, result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.cacheOperations.WithLabelValues(operation, result).Inc()
	r.cacheLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (r *Recorder) ObservePageRead(scope string, source PageSource) {
	if r == nil {
		return
	}
	r.pageReads.WithLabelValues(scope, string(source)).Inc()
}

func (r *Recorder) ObserveInvalidation(ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "partial"
	}
	r.invalidations.WithLabelValues(result).Inc()
}

func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
