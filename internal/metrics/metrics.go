// Package metrics exposes Prometheus collectors for the docstudio server and CLI.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	namespace = "docstudio"

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	llmAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_attempts_total",
			Help:      "Number of LLM provider calls by outcome",
		},
		[]string{"outcome"},
	)

	llmRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_retries_total",
			Help:      "Number of LLM calls retried after a rate limit",
		},
	)

	generationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Number of generate, analyze and rewrite operations",
		},
		[]string{"operation", "kind", "status"},
	)

	exportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_total",
			Help:      "Number of exported artifacts",
		},
		[]string{"status", "format"},
	)

	exportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time spent encoding an artifact",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status", "format"},
	)
)

func HttpRequestsTotal(method, path, code string) {
	httpRequestsTotal.With(prometheus.Labels{
		"method": method,
		"path":   path,
		"code":   code,
	}).Inc()
}

func HttpRequestDuration(method, path string, duration time.Duration) {
	httpRequestDuration.With(prometheus.Labels{
		"method": method,
		"path":   path,
	}).Observe(duration.Seconds())
}

// LLMAttempt counts one provider call. outcome is "ok" or an llm error kind.
func LLMAttempt(outcome string) {
	llmAttemptsTotal.With(prometheus.Labels{"outcome": outcome}).Inc()
}

func LLMRetry() {
	llmRetriesTotal.Inc()
}

func GenerationRequest(operation, kind, status string) {
	generationRequestsTotal.With(prometheus.Labels{
		"operation": operation,
		"kind":      kind,
		"status":    status,
	}).Inc()
}

func ExportTotal(status, format string) {
	exportTotal.With(prometheus.Labels{
		"status": status,
		"format": format,
	}).Inc()
}

func ExportDuration(status, format string, duration time.Duration) {
	exportDuration.With(prometheus.Labels{
		"status": status,
		"format": format,
	}).Observe(duration.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latencies. Requests are labelled by the
// ServeMux pattern that matched them so path parameters do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		HttpRequestsTotal(r.Method, path, strconv.Itoa(ww.status))
		HttpRequestDuration(r.Method, path, time.Since(start))
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
