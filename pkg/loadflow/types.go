// Package loadflow finds a steady-state voltage profile that satisfies power
// balance across a network, or reports how close it came. Non-convergence is
// a result state, not an error: the best available estimate is still
// diagnostically useful to the caller.
package loadflow

// State tracks the solver through its lifecycle. The solver always moves
// Initializing -> Iterating -> (Converged | MaxIterationsExceeded).
type State int

const (
	StateInitializing State = iota
	StateIterating
	StateConverged
	StateMaxIterationsExceeded
)

// String returns the state name for logs and result envelopes.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateMaxIterationsExceeded:
		return "max_iterations_exceeded"
	default:
		return "unknown"
	}
}

// Default criteria. The tolerance is the maximum per-bus apparent-power
// mismatch in per-unit.
const (
	DefaultTolerancePU        = 1e-4
	DefaultMaxIterations      = 50
	DefaultVoltageBandPercent = 10.0
)

// Criteria bounds a single solve. It belongs to the request, not to the
// network; the iteration cap is the engine's only cancellation mechanism.
type Criteria struct {
	// Zero values fall back to the package defaults.
	TolerancePU   float64 `yaml:"tolerance_pu"`
	MaxIterations int     `yaml:"max_iterations"`
	// VoltageBandPercent is the compliance band around nominal voltage.
	// Zero means the default +-10%.
	VoltageBandPercent float64 `yaml:"voltage_band_percent"`
}

// DefaultCriteria returns the standard solve parameters.
func DefaultCriteria() Criteria {
	return Criteria{
		TolerancePU:        DefaultTolerancePU,
		MaxIterations:      DefaultMaxIterations,
		VoltageBandPercent: DefaultVoltageBandPercent,
	}
}

func (c Criteria) withDefaults() Criteria {
	if c.TolerancePU <= 0 {
		c.TolerancePU = DefaultTolerancePU
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.VoltageBandPercent <= 0 {
		c.VoltageBandPercent = DefaultVoltageBandPercent
	}
	return c
}

// BusResult is the solved operating point of one bus.
type BusResult struct {
	BusID           string
	VoltagePU       float64
	VoltageV        float64
	AngleDeg        float64
	GenerationMW    float64
	LoadMW          float64
	WithinTolerance bool
}

// BranchResult is the solved flow through one branch, measured at the From
// side.
type BranchResult struct {
	BranchID       string
	From           string
	To             string
	CurrentA       float64
	PowerMW        float64
	PowerMVAr      float64
	LossesMW       float64
	LoadingPercent float64
	Overloaded     bool
}

// Summary aggregates the solved system state.
type Summary struct {
	TotalGenerationMW   float64
	TotalLoadMW         float64
	TotalLossesMW       float64
	MinVoltageBus       string
	MinVoltagePU        float64
	MaxVoltageBus       string
	MaxVoltagePU        float64
	OverloadedBranches  []string
	OutOfToleranceBuses []string
}

// Result carries the solved (or best-effort) system state. When State is
// StateMaxIterationsExceeded the voltages are the last estimate, tagged as
// unconverged rather than discarded.
type Result struct {
	State         State
	Converged     bool
	Iterations    int
	MaxMismatchPU float64
	Buses         []BusResult
	Branches      []BranchResult
	Summary       Summary
}
