// Package metrics exposes the engine's Prometheus instrumentation. The
// engine itself works without a registry; callers that want observability
// construct one and pass it to the analysis facade.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the engine.
type Registry struct {
	registry *prometheus.Registry

	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec

	// Solver metrics
	SolverIterations   prometheus.Histogram
	SolverMismatchPU   prometheus.Histogram
	SolverNonConverged prometheus.Counter

	// Fault metrics
	FaultCurrentKA prometheus.Histogram

	// Contingency metrics
	ContingencyScansTotal      prometheus.Counter
	ContingencyCriticalOutages prometheus.Histogram
	LastLoadabilityMargin      prometheus.Gauge
	LastVoltageStabilityMargin prometheus.Gauge
}

// New creates a registry with all engine metrics registered.
func New() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initAnalysisMetrics()
	r.initSolverMetrics()
	r.initContingencyMetrics()
	return r
}

// Handler returns an HTTP handler exposing the registry in Prometheus text
// format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

// RecordAnalysis records one facade call. All Record helpers are nil-safe so
// instrumentation stays optional.
func (r *Registry) RecordAnalysis(kind, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.AnalysesTotal.WithLabelValues(kind, status).Inc()
	r.AnalysisDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordSolve records a load-flow solve outcome.
func (r *Registry) RecordSolve(iterations int, mismatchPU float64, converged bool) {
	if r == nil {
		return
	}
	r.SolverIterations.Observe(float64(iterations))
	r.SolverMismatchPU.Observe(mismatchPU)
	if !converged {
		r.SolverNonConverged.Inc()
	}
}

// RecordFaultCurrent records a computed symmetrical fault current.
func (r *Registry) RecordFaultCurrent(symmetricalA float64) {
	if r == nil {
		return
	}
	r.FaultCurrentKA.Observe(symmetricalA / 1000)
}

// RecordContingencyScan records an N-1 scan outcome.
func (r *Registry) RecordContingencyScan(criticalOutages int, loadabilityMargin, voltageMargin float64) {
	if r == nil {
		return
	}
	r.ContingencyScansTotal.Inc()
	r.ContingencyCriticalOutages.Observe(float64(criticalOutages))
	r.LastLoadabilityMargin.Set(loadabilityMargin)
	r.LastVoltageStabilityMargin.Set(voltageMargin)
}
