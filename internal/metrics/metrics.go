package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	DetectionRuns        prometheus.Counter
	AnomaliesDetected    *prometheus.CounterVec
	SuggestionsGenerated prometheus.Counter
	ForecastsGenerated   prometheus.Counter
	CacheHits            *prometheus.CounterVec

	// BackendLatencySec is labelled by endpoint and outcome (ok, http_error, transport_error).
	BackendLatencySec *prometheus.HistogramVec
	// HTTPLatencySec is labelled by method, route template and status code.
	HTTPLatencySec *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	detectionRuns := prometheus.NewCounter(prometheus.CounterOpts{Name: "scm_anomaly_detection_runs_total"})
	anomalies := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "scm_anomalies_detected_total"}, []string{"type", "severity"})
	suggestions := prometheus.NewCounter(prometheus.CounterOpts{Name: "scm_procurement_suggestions_generated_total"})
	forecasts := prometheus.NewCounter(prometheus.CounterOpts{Name: "scm_forecasts_generated_total"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "scm_cache_lookups_total"}, []string{"cache", "result"})
	backendLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scm_backend_request_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "outcome"})

	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scm_http_request_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	r.MustRegister(detectionRuns, anomalies, suggestions, forecasts, cacheHits, backendLatency, httpLatency)
	return &Registry{
		reg:                  r,
		DetectionRuns:        detectionRuns,
		AnomaliesDetected:    anomalies,
		SuggestionsGenerated: suggestions,
		ForecastsGenerated:   forecasts,
		CacheHits:            cacheHits,
		BackendLatencySec:    backendLatency,
		HTTPLatencySec:       httpLatency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
