// Package fault computes prospective fault currents at a point from the
// aggregated path impedance. The decay multipliers for momentary,
// interrupting, and steady-state duty are engineering approximations, not
// first principles; they stay configurable because real values depend on
// generator and motor contribution decay that this model does not carry.
package fault

import (
	"fmt"
	"math"

	"github.com/amberline/powerflow/pkg/impedance"
	"github.com/amberline/powerflow/pkg/network"
)

// Type selects the fault geometry.
type Type string

const (
	ThreePhase       Type = "three_phase"
	PhaseToPhase     Type = "phase_to_phase"
	SinglePhaseEarth Type = "single_phase_earth"
)

// EarthingSystem selects the supply earthing arrangement. It only matters
// for earth faults: a TT system returns through the earth electrode, which
// inflates the effective loop impedance.
type EarthingSystem string

const (
	EarthingTNS  EarthingSystem = "tn_s"
	EarthingTNCS EarthingSystem = "tn_c_s"
	EarthingTT   EarthingSystem = "tt"
)

// Params holds the configurable constants of the engine.
type Params struct {
	// FrequencyHz is the system frequency used for DC-offset decay.
	FrequencyHz float64 `yaml:"frequency_hz"`
	// FirstCycleS is the time at which the asymmetrical peak is evaluated.
	FirstCycleS float64 `yaml:"first_cycle_s"`
	// Duty multipliers applied to the initial symmetrical current.
	MomentaryFactor    float64 `yaml:"momentary_factor"`
	InterruptingFactor float64 `yaml:"interrupting_factor"`
	SteadyStateFactor  float64 `yaml:"steady_state_factor"`
	// MinImpedanceOhms guards against unbounded currents from near-zero
	// aggregates.
	MinImpedanceOhms float64 `yaml:"min_impedance_ohms"`
	// TTLoopMultiplier inflates the earth-fault loop impedance on TT
	// systems to account for the electrode return path.
	TTLoopMultiplier float64 `yaml:"tt_loop_multiplier"`
}

// DefaultParams returns the standard engine constants: 50 Hz system, peak
// evaluated at 10 ms, the usual 1.6/1.0/0.5 duty multipliers, and a 1 mohm
// impedance floor.
func DefaultParams() Params {
	return Params{
		FrequencyHz:        50,
		FirstCycleS:        0.01,
		MomentaryFactor:    1.6,
		InterruptingFactor: 1.0,
		SteadyStateFactor:  0.5,
		MinImpedanceOhms:   0.001,
		TTLoopMultiplier:   3.0,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.FrequencyHz <= 0 {
		p.FrequencyHz = d.FrequencyHz
	}
	if p.FirstCycleS <= 0 {
		p.FirstCycleS = d.FirstCycleS
	}
	if p.MomentaryFactor <= 0 {
		p.MomentaryFactor = d.MomentaryFactor
	}
	if p.InterruptingFactor <= 0 {
		p.InterruptingFactor = d.InterruptingFactor
	}
	if p.SteadyStateFactor <= 0 {
		p.SteadyStateFactor = d.SteadyStateFactor
	}
	if p.MinImpedanceOhms <= 0 {
		p.MinImpedanceOhms = d.MinImpedanceOhms
	}
	if p.TTLoopMultiplier <= 0 {
		p.TTLoopMultiplier = d.TTLoopMultiplier
	}
	return p
}

// Currents carries the computed duty currents in amperes.
type Currents struct {
	SymmetricalA      float64
	AsymmetricalPeakA float64
	MomentaryA        float64
	InterruptingA     float64
	SteadyStateA      float64
	XOverR            float64
}

// Compute derives the duty currents for a fault of the given type at a point
// with the given aggregated impedance and line-to-line source voltage.
//
// Fails with DegenerateNetworkError when the effective impedance magnitude
// sits below the configured floor, instead of reporting an unbounded
// current.
func Compute(agg impedance.Impedance, sourceVoltageV float64, faultType Type, earthing EarthingSystem, params Params) (Currents, error) {
	params = params.withDefaults()

	if sourceVoltageV <= 0 {
		return Currents{}, fmt.Errorf("fault: source voltage must be positive, got %g", sourceVoltageV)
	}

	magnitude := agg.Magnitude()
	effective := magnitude
	if faultType == SinglePhaseEarth && earthing == EarthingTT {
		effective = magnitude * params.TTLoopMultiplier
	}

	if effective < params.MinImpedanceOhms {
		return Currents{}, &network.DegenerateNetworkError{
			Detail:        "fault path impedance below minimum",
			MagnitudeOhms: effective,
		}
	}

	var symmetrical float64
	switch faultType {
	case ThreePhase:
		symmetrical = sourceVoltageV * math.Sqrt(3) / effective
	case PhaseToPhase:
		symmetrical = sourceVoltageV / effective
	case SinglePhaseEarth:
		symmetrical = sourceVoltageV / math.Sqrt(3) / effective
	default:
		return Currents{}, fmt.Errorf("fault: unknown fault type %q", faultType)
	}

	xOverR := agg.XOverR()
	return Currents{
		SymmetricalA:      symmetrical,
		AsymmetricalPeakA: symmetrical * peakFactor(xOverR, params),
		MomentaryA:        symmetrical * params.MomentaryFactor,
		InterruptingA:     symmetrical * params.InterruptingFactor,
		SteadyStateA:      symmetrical * params.SteadyStateFactor,
		XOverR:            xOverR,
	}, nil
}

// peakFactor converts RMS symmetrical current to the first-cycle peak,
// including the DC offset from the X/R ratio:
//
//	k = sqrt(2) * (1 + e^(-2*pi*f*t / (X/R)))
//
// A purely resistive path (X/R = 0) has no DC offset and the factor
// collapses to sqrt(2). The factor grows monotonically with X/R, so the
// peak always meets or exceeds sqrt(2) times the symmetrical RMS.
func peakFactor(xOverR float64, params Params) float64 {
	dc := 0.0
	if xOverR > 0 {
		dc = math.Exp(-2 * math.Pi * params.FrequencyHz * params.FirstCycleS / xOverR)
	}
	return math.Sqrt2 * (1 + dc)
}
