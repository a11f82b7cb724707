package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// BuildDuration records model assembly times in seconds
	BuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "plan_build_duration_seconds", Help: "Model assembly duration in seconds.", Buckets: prometheus.DefBuckets},
	)
	// SolveDuration records solver wall times in seconds
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "plan_solve_duration_seconds", Help: "Solver wall time in seconds.",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600}},
	)
	// Runs counts finished runs by terminal status
	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "plan_runs_total", Help: "Planning runs by terminal status."},
		[]string{"status"},
	)
	// ModelVars reports the size of the last assembled program
	ModelVars = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "plan_model_variables", Help: "Variables in the last assembled program."},
	)
	// ModelConstraints reports the row count of the last assembled program
	ModelConstraints = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "plan_model_constraints", Help: "Constraints in the last assembled program."},
	)

	// WebhookDeliveries counts webhook delivery outcomes by event type and status
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
	// WebhookLatency tracks webhook delivery latencies in milliseconds
	WebhookLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"event_type", "status"},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(BuildDuration)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(Runs)
		Registry.MustRegister(ModelVars)
		Registry.MustRegister(ModelConstraints)
		Registry.MustRegister(WebhookDeliveries)
		Registry.MustRegister(WebhookLatency)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
