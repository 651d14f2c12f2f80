// Package metrics provides Prometheus metrics collection for the
// prediction service. It defines and manages the instruments for the
// prediction pipeline, the upstream feed and the HTTP/WebSocket
// surface, exposed via the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus instruments for the service.
type Metrics struct {
	// Prediction pipeline metrics
	PredictionsTotal prometheus.Counter   // Completed prediction cycles
	CycleFailures    prometheus.Counter   // Cycles aborted by a fatal error
	ClassifierErrors prometheus.Counter   // Individual voters skipped
	CycleDuration    prometheus.Histogram // End-to-end cycle latency
	LastConfidence   prometheus.Gauge     // Confidence of the latest prediction
	DrawsAnalyzed    prometheus.Gauge     // History depth of the latest cycle

	// Upstream feed metrics
	FetchRetries  prometheus.Counter // Feed fetch retry attempts
	FetchFailures prometheus.Counter // Feed fetches that exhausted retries

	// HTTP and stream metrics
	HTTPDuration *prometheus.HistogramVec // Request latency per route
	WSClients    prometheus.Gauge         // Connected stream clients
	WSBroadcasts prometheus.Counter       // Payloads fanned out to the stream
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry, keeping
// tests isolated from the global state.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of completed prediction cycles",
		}),
		CycleFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_cycle_failures_total",
			Help: "Total number of prediction cycles aborted by a fatal error",
		}),
		ClassifierErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "classifier_errors_total",
			Help: "Total number of classifier votes skipped due to errors",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_cycle_duration_seconds",
			Help:    "End-to-end prediction cycle duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		LastConfidence: factory.NewGauge(prometheus.GaugeOpts{
			Name: "prediction_last_confidence",
			Help: "Confidence score of the most recent prediction",
		}),
		DrawsAnalyzed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "prediction_draws_analyzed",
			Help: "Number of draws analyzed in the most recent cycle",
		}),
		FetchRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "feed_fetch_retries_total",
			Help: "Total number of upstream feed fetch retries",
		}),
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "feed_fetch_failures_total",
			Help: "Total number of upstream feed fetches that exhausted retries",
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_clients",
			Help: "Number of connected WebSocket stream clients",
		}),
		WSBroadcasts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ws_broadcasts_total",
			Help: "Total number of prediction payloads broadcast to the stream",
		}),
	}
}
