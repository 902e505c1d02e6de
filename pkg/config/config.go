// Package config carries the engine's tunable constants. Everything has a
// working default; a YAML file can override any of it. The duty multipliers
// live here rather than in code because they are engineering approximations,
// not derived truth.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/amberline/powerflow/pkg/fault"
	"github.com/amberline/powerflow/pkg/loadflow"
	"github.com/amberline/powerflow/pkg/protection"
)

// Engine is the full engine configuration.
type Engine struct {
	Solver      Solver            `yaml:"solver"`
	Fault       fault.Params      `yaml:"fault"`
	Protection  protection.Params `yaml:"protection"`
	Contingency Contingency       `yaml:"contingency"`
}

// Solver holds the default convergence criteria applied when a request does
// not carry its own.
type Solver struct {
	TolerancePU        float64 `yaml:"tolerance_pu"`
	MaxIterations      int     `yaml:"max_iterations"`
	VoltageBandPercent float64 `yaml:"voltage_band_percent"`
}

// Contingency holds the N-1 scan settings.
type Contingency struct {
	// Workers sizes the scan's worker pool. Zero means one per CPU.
	Workers int `yaml:"workers"`
}

// Default returns the standard engine configuration.
func Default() Engine {
	return Engine{
		Solver: Solver{
			TolerancePU:        loadflow.DefaultTolerancePU,
			MaxIterations:      loadflow.DefaultMaxIterations,
			VoltageBandPercent: loadflow.DefaultVoltageBandPercent,
		},
		Fault:      fault.DefaultParams(),
		Protection: protection.DefaultParams(),
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Engine, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Engine{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Engine{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}

// Criteria converts the solver section into request criteria.
func (e Engine) Criteria() loadflow.Criteria {
	return loadflow.Criteria{
		TolerancePU:        e.Solver.TolerancePU,
		MaxIterations:      e.Solver.MaxIterations,
		VoltageBandPercent: e.Solver.VoltageBandPercent,
	}
}

// Validate checks every section and reports all problems at once.
func (e Engine) Validate() error {
	v := NewValidator("engine")

	v.PositiveFloat("solver.tolerance_pu", e.Solver.TolerancePU)
	v.PositiveInt("solver.max_iterations", e.Solver.MaxIterations)
	v.RangeFloat("solver.voltage_band_percent", e.Solver.VoltageBandPercent, 1, 50)

	v.PositiveFloat("fault.frequency_hz", e.Fault.FrequencyHz)
	v.PositiveFloat("fault.first_cycle_s", e.Fault.FirstCycleS)
	v.PositiveFloat("fault.momentary_factor", e.Fault.MomentaryFactor)
	v.PositiveFloat("fault.interrupting_factor", e.Fault.InterruptingFactor)
	v.PositiveFloat("fault.steady_state_factor", e.Fault.SteadyStateFactor)
	v.PositiveFloat("fault.min_impedance_ohms", e.Fault.MinImpedanceOhms)
	v.MinFloat("fault.tt_loop_multiplier", e.Fault.TTLoopMultiplier, 1)

	v.PositiveFloat("protection.breaker_opening_s", e.Protection.BreakerOpeningS)
	v.PositiveFloat("protection.arc_energy_k", e.Protection.ArcEnergyK)
	v.PositiveFloat("protection.working_distance_mm", e.Protection.WorkingDistanceMM)
	v.PositiveFloat("protection.reference_distance_mm", e.Protection.ReferenceDistanceMM)
	v.PositiveFloat("protection.boundary_k_mm", e.Protection.BoundaryKMM)

	v.MinInt("contingency.workers", e.Contingency.Workers, 0)

	return v.Err()
}
