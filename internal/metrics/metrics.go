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

	// Optimizations counts route-order optimizations by strategy and outcome
	Optimizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_optimizations_total", Help: "Route optimizations by strategy and status."},
		[]string{"strategy", "status"},
	)
	// LightAnalyses counts full-route traffic light analyses
	LightAnalyses = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "light_analyses_total", Help: "Traffic light route analyses."},
	)
	// ProviderRequests counts upstream collaborator calls by provider and outcome
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "provider_requests_total", Help: "Upstream provider calls by provider and status."},
		[]string{"provider", "status"},
	)
	// DetectedLights tracks how many lights route analyses find
	DetectedLights = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "detected_lights_per_route", Help: "Lights detected per analyzed route.", Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100}},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Optimizations)
		Registry.MustRegister(LightAnalyses)
		Registry.MustRegister(ProviderRequests)
		Registry.MustRegister(DetectedLights)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
