// Package analysis is the engine facade. It validates inputs, orchestrates
// the impedance aggregator, load-flow solver, fault engine, protection
// assessor, and contingency analyzer, and assembles the result envelopes.
//
// Every call is a pure function of its inputs plus the engine's immutable
// configuration, so one Engine value can serve any number of concurrent
// analyses.
package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/amberline/powerflow/pkg/config"
	"github.com/amberline/powerflow/pkg/contingency"
	"github.com/amberline/powerflow/pkg/fault"
	"github.com/amberline/powerflow/pkg/impedance"
	"github.com/amberline/powerflow/pkg/loadflow"
	"github.com/amberline/powerflow/pkg/logging"
	"github.com/amberline/powerflow/pkg/metrics"
	"github.com/amberline/powerflow/pkg/network"
	"github.com/amberline/powerflow/pkg/protection"
)

// Engine runs the two public analyses. Construct once, share freely.
type Engine struct {
	cfg     config.Engine
	log     logging.Logger
	metrics *metrics.Registry
}

// Option customises an Engine.
type Option func(*Engine)

// WithConfig overrides the default engine constants.
func WithConfig(cfg config.Engine) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger attaches a structured logger. The default discards output.
func WithLogger(log logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics attaches a Prometheus registry. Without one the engine runs
// uninstrumented.
func WithMetrics(reg *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = reg }
}

// New creates an engine with defaults: standard constants, no logging, no
// metrics.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg: config.Default(),
		log: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AnalyzeShortCircuit computes the prospective fault currents at the end of
// the supplied source-transformer-conductor path, then derives protection
// coordination, equipment stress, and switchgear adequacy.
//
// Fails with TopologyError for structural problems, DegenerateNetworkError
// for a zero-impedance path, and ErrInvalidInput for malformed requests.
func (e *Engine) AnalyzeShortCircuit(in ShortCircuitInput) (*ShortCircuitResult, error) {
	started := time.Now()
	if err := validateInput(in); err != nil {
		e.metrics.RecordAnalysis("short_circuit", "invalid", time.Since(started))
		e.log.Warn("short-circuit input rejected", logging.Error(err))
		return nil, err
	}

	earthing := in.Earthing
	if earthing == "" {
		earthing = fault.EarthingTNS
	}

	source := network.Source{
		NominalVoltageV: in.Source.VoltageV,
		ImpedanceOhms:   in.Source.ImpedanceOhms,
		XOverR:          in.Source.XOverR,
	}

	agg, err := impedance.AggregatePath(source, in.Transformers, in.Conductors, in.SystemVoltageV)
	if err != nil {
		e.metrics.RecordAnalysis("short_circuit", "degenerate", time.Since(started))
		e.log.Warn("impedance aggregation failed", logging.Error(err))
		return nil, err
	}

	currents, err := fault.Compute(agg.Total, in.SystemVoltageV, in.FaultType, earthing, e.cfg.Fault)
	if err != nil {
		e.metrics.RecordAnalysis("short_circuit", "degenerate", time.Since(started))
		e.log.Warn("fault computation failed", logging.Error(err))
		return nil, err
	}

	res := &ShortCircuitResult{
		RunID:      uuid.New(),
		FaultType:  in.FaultType,
		Earthing:   earthing,
		Impedance:  agg,
		Currents:   currents,
		Protection: protection.Assess(currents, in.Protection, e.cfg.Protection),
		Switchgear: assessSwitchgear(currents.InterruptingA),
	}

	// Voltage divider over the aggregated path: the fault point is pinned
	// to zero, the source terminal retains the share dropped across the
	// downstream impedance.
	downstream := agg.Transformers.Add(agg.Conductors)
	retained := downstream.Magnitude() / agg.Total.Magnitude() * 100
	res.VoltageProfile = VoltageProfile{
		FaultPointV:           0,
		SourceRetainedPercent: retained,
		Sag:                   classifySag(retained),
	}

	res.Recommendations = shortCircuitRecommendations(res)

	e.log.Debug("protection assessment",
		logging.Float64("arc_energy_cal_cm2", res.Protection.ArcEnergyCalCm2),
		logging.Int("ppe_category", res.Protection.PPECategory),
		logging.Bool("remote_operation_advised", res.Protection.RemoteOperationAdvised),
	)
	e.metrics.RecordAnalysis("short_circuit", "ok", time.Since(started))
	e.metrics.RecordFaultCurrent(currents.SymmetricalA)
	e.log.Info("short-circuit analysis complete",
		logging.RunID(res.RunID),
		logging.String("fault_type", string(in.FaultType)),
		logging.FaultKA(currents.SymmetricalA),
		logging.String("coordination", string(res.Protection.Coordination)),
		logging.Latency(time.Since(started)),
	)
	return res, nil
}

// AnalyzeLoadFlow validates the supplied network, solves the steady state,
// and unless disabled runs the N-1 contingency scan.
//
// Fails with TopologyError before any iteration runs when the network is
// structurally unsound. Non-convergence is reported inside the result, not
// as an error.
func (e *Engine) AnalyzeLoadFlow(in LoadFlowInput) (*LoadFlowResult, error) {
	started := time.Now()
	if err := validateInput(in); err != nil {
		e.metrics.RecordAnalysis("load_flow", "invalid", time.Since(started))
		e.log.Warn("load-flow input rejected", logging.Error(err))
		return nil, err
	}

	net := network.Network{
		BaseMVA:      in.BaseMVA,
		BaseVoltageV: in.BaseVoltageV,
		Buses:        in.Buses,
		Branches:     in.Branches,
	}
	if err := network.Validate(net); err != nil {
		e.metrics.RecordAnalysis("load_flow", "topology_error", time.Since(started))
		e.log.Warn("network validation failed", logging.Error(err))
		return nil, err
	}

	criteria := in.Criteria
	if criteria.TolerancePU <= 0 {
		criteria.TolerancePU = e.cfg.Solver.TolerancePU
	}
	if criteria.MaxIterations <= 0 {
		criteria.MaxIterations = e.cfg.Solver.MaxIterations
	}
	if criteria.VoltageBandPercent <= 0 {
		criteria.VoltageBandPercent = e.cfg.Solver.VoltageBandPercent
	}

	solution, err := loadflow.Solve(net, criteria)
	if err != nil {
		e.metrics.RecordAnalysis("load_flow", "degenerate", time.Since(started))
		e.log.Warn("load-flow solve failed", logging.Error(err))
		return nil, err
	}
	e.metrics.RecordSolve(solution.Iterations, solution.MaxMismatchPU, solution.Converged)
	e.log.Debug("load flow solved",
		logging.Bool("converged", solution.Converged),
		logging.Iterations(solution.Iterations),
		logging.MismatchPU(solution.MaxMismatchPU),
	)
	for _, busID := range solution.Summary.OutOfToleranceBuses {
		e.log.Debug("bus outside voltage band", logging.BusID(busID))
	}
	for _, branchID := range solution.Summary.OverloadedBranches {
		e.log.Debug("branch loaded beyond rating", logging.BranchID(branchID))
	}

	res := &LoadFlowResult{
		RunID:    uuid.New(),
		Solution: *solution,
	}

	if !in.SkipContingency {
		report, err := contingency.Scan(net, criteria, e.cfg.Contingency.Workers)
		if err != nil {
			e.metrics.RecordAnalysis("load_flow", "contingency_error", time.Since(started))
			e.log.Warn("contingency scan failed", logging.Error(err))
			return nil, err
		}
		res.Contingency = report
		e.metrics.RecordContingencyScan(len(report.CriticalBranches),
			report.LoadabilityMarginPercent, report.VoltageStabilityMarginPercent)
		e.log.Debug("contingency scan complete",
			logging.Int("critical_outages", len(report.CriticalBranches)),
			logging.MarginPercent("loadability_margin_percent", report.LoadabilityMarginPercent),
			logging.MarginPercent("voltage_stability_margin_percent", report.VoltageStabilityMarginPercent),
		)
		for _, branchID := range report.CriticalBranches {
			e.log.Debug("critical outage", logging.BranchID(branchID))
		}
	}

	res.Recommendations = loadFlowRecommendations(res)

	e.metrics.RecordAnalysis("load_flow", solution.State.String(), time.Since(started))
	e.log.Info("load-flow analysis complete",
		logging.RunID(res.RunID),
		logging.String("state", solution.State.String()),
		logging.Iterations(solution.Iterations),
		logging.MismatchPU(solution.MaxMismatchPU),
		logging.Latency(time.Since(started)),
	)
	return res, nil
}
