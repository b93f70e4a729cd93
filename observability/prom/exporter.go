// Package prom exports observability.Metrics through the Prometheus client.
package prom

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KamdynS/petclinic-genai/observability"
)

// Exporter implements observability.Metrics on Prometheus collectors
type Exporter struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

// New creates and registers the collectors under namespace
func New(reg prometheus.Registerer, namespace string) (*Exporter, error) {
	e := &Exporter{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Handled requests by operation and status.",
		}, []string{"operation", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of HTTP routes, tool executions and LLM calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by LLM calls.",
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors by type and operation.",
		}, []string{"type", "operation"}),
	}
	for _, c := range []prometheus.Collector{e.requests, e.latency, e.tokens, e.errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Handler serves the registry in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// IncrementRequests implements observability.Metrics interface
func (e *Exporter) IncrementRequests(labels map[string]string) {
	e.requests.WithLabelValues(operation(labels), labels[observability.LabelStatus]).Inc()
}

// RecordLatency implements observability.Metrics interface
func (e *Exporter) RecordLatency(d time.Duration, labels map[string]string) {
	e.latency.WithLabelValues(operation(labels)).Observe(d.Seconds())
}

// IncrementTokensUsed implements observability.Metrics interface
func (e *Exporter) IncrementTokensUsed(tokens int, labels map[string]string) {
	e.tokens.WithLabelValues(operation(labels)).Add(float64(tokens))
}

// RecordError implements observability.Metrics interface
func (e *Exporter) RecordError(errorType string, labels map[string]string) {
	e.errors.WithLabelValues(errorType, operation(labels)).Inc()
}

// operation collapses the label map to a single bounded label value
func operation(labels map[string]string) string {
	if v, ok := labels[observability.LabelTool]; ok {
		return "tool:" + v
	}
	if v, ok := labels[observability.LabelRoute]; ok {
		return labels[observability.LabelMethod] + " " + v
	}
	if v, ok := labels[observability.LabelModel]; ok {
		return "llm:" + v
	}
	return "generic"
}

var _ observability.Metrics = (*Exporter)(nil)
