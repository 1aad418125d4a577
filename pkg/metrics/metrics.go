// Package metrics holds the Prometheus instruments of the API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DependencyEngine      = "workflow_engine"
	DependencyObjectStore = "object_store"
	DependencyLedger      = "ledger"
	DependencyEventBus    = "event_bus"
)

var upstreamDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Metrics is safe to use as a nil pointer, which records nothing.
type Metrics struct {
	LaunchesTotal          *prometheus.CounterVec
	StatusPollsTotal       *prometheus.CounterVec
	ArtifactRedirectsTotal *prometheus.CounterVec
	UpstreamErrorsTotal    *prometheus.CounterVec
	UpstreamDuration       *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// InitMetrics creates and registers all instruments on reg.
func InitMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		LaunchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hl7autoct_launches_total",
			Help: "Total number of pipeline launch requests.",
		}, []string{"result"}),
		StatusPollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hl7autoct_status_polls_total",
			Help: "Total number of status polls answered, by execution status.",
		}, []string{"status"}),
		ArtifactRedirectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hl7autoct_artifact_redirects_total",
			Help: "Total number of redirects to artifacts.",
		}, []string{"type"}),
		UpstreamErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hl7autoct_upstream_errors_total",
			Help: "Total number of failed calls to dependencies.",
		}, []string{"dependency"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hl7autoct_upstream_duration_seconds",
			Help:    "Duration of calls to dependencies in seconds.",
			Buckets: upstreamDurationBuckets,
		}, []string{"dependency", "operation"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.LaunchesTotal,
		m.StatusPollsTotal,
		m.ArtifactRedirectsTotal,
		m.UpstreamErrorsTotal,
		m.UpstreamDuration,
	)

	return m
}

func (m *Metrics) RecordLaunch(result string) {
	if m == nil {
		return
	}

	m.LaunchesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordStatusPoll(status string) {
	if m == nil {
		return
	}

	m.StatusPollsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordArtifactRedirect(artifactType string) {
	if m == nil {
		return
	}

	m.ArtifactRedirectsTotal.WithLabelValues(artifactType).Inc()
}

// ObserveUpstream records one call to a dependency and counts it as an error
// when err is not nil.
func (m *Metrics) ObserveUpstream(dependency, operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	m.UpstreamDuration.WithLabelValues(dependency, operation).Observe(elapsed.Seconds())

	if err != nil {
		m.UpstreamErrorsTotal.WithLabelValues(dependency).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
