package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerflow_analyses_total",
			Help: "Total number of analyses executed",
		},
		[]string{"kind", "status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "powerflow_analysis_duration_seconds",
			Help:    "Analysis execution duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"kind"},
	)
}

func (r *Registry) initSolverMetrics() {
	r.SolverIterations = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "powerflow_solver_iterations",
			Help:    "Iterations taken per load-flow solve",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
		},
	)

	r.SolverMismatchPU = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "powerflow_solver_mismatch_pu",
			Help:    "Final per-bus power mismatch per solve, in per-unit",
			Buckets: []float64{1e-8, 1e-6, 1e-4, 1e-2, 1, 100},
		},
	)

	r.SolverNonConverged = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "powerflow_solver_nonconverged_total",
			Help: "Total number of solves that hit the iteration cap",
		},
	)

	r.FaultCurrentKA = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "powerflow_fault_current_ka",
			Help:    "Computed symmetrical fault currents in kA",
			Buckets: []float64{1, 5, 10, 16, 25, 31.5, 40, 50, 80},
		},
	)
}

func (r *Registry) initContingencyMetrics() {
	r.ContingencyScansTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "powerflow_contingency_scans_total",
			Help: "Total number of N-1 contingency scans",
		},
	)

	r.ContingencyCriticalOutages = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "powerflow_contingency_critical_outages",
			Help:    "Critical outages found per contingency scan",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		},
	)

	r.LastLoadabilityMargin = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "powerflow_loadability_margin_percent",
			Help: "Loadability margin of the most recent contingency scan",
		},
	)

	r.LastVoltageStabilityMargin = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "powerflow_voltage_stability_margin_percent",
			Help: "Voltage stability margin of the most recent contingency scan",
		},
	)
}
