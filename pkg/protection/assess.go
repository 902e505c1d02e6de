// Package protection translates fault currents into protection-coordination
// and safety metrics: clearing time, arc incident energy, PPE category, and
// equipment stress.
package protection

import (
	"math"

	"github.com/amberline/powerflow/pkg/fault"
)

// Coordination classifies how well the protection clears the fault.
type Coordination string

const (
	CoordinationAdequate   Coordination = "adequate"
	CoordinationMarginal   Coordination = "marginal"
	CoordinationInadequate Coordination = "inadequate"
)

// Settings are the upstream protective device settings supplied by the
// caller.
type Settings struct {
	PickupA    float64 `yaml:"pickup_a" validate:"gt=0"`
	TimeDelayS float64 `yaml:"time_delay_s" validate:"gte=0"`
}

// Params holds the assessor's configurable constants.
type Params struct {
	// BreakerOpeningS is the fixed mechanical opening allowance added to
	// the protection operating time.
	BreakerOpeningS float64 `yaml:"breaker_opening_s"`
	// ArcEnergyK scales the simplified IEEE-1584 incident energy formula.
	ArcEnergyK float64 `yaml:"arc_energy_k"`
	// Working and reference distances for the inverse-square energy
	// scaling, in millimetres.
	WorkingDistanceMM   float64 `yaml:"working_distance_mm"`
	ReferenceDistanceMM float64 `yaml:"reference_distance_mm"`
	// BoundaryKMM converts the square root of incident energy to the
	// arc-flash boundary distance in millimetres.
	BoundaryKMM float64 `yaml:"boundary_k_mm"`
}

// DefaultParams returns the standard assessor constants: 50 ms breaker
// opening and a working distance equal to the 610 mm reference the
// simplified energy formula is normalised at. Closer working distances
// raise the energy by the inverse square.
func DefaultParams() Params {
	return Params{
		BreakerOpeningS:     0.05,
		ArcEnergyK:          1.0,
		WorkingDistanceMM:   610,
		ReferenceDistanceMM: 610,
		BoundaryKMM:         900,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.BreakerOpeningS <= 0 {
		p.BreakerOpeningS = d.BreakerOpeningS
	}
	if p.ArcEnergyK <= 0 {
		p.ArcEnergyK = d.ArcEnergyK
	}
	if p.WorkingDistanceMM <= 0 {
		p.WorkingDistanceMM = d.WorkingDistanceMM
	}
	if p.ReferenceDistanceMM <= 0 {
		p.ReferenceDistanceMM = d.ReferenceDistanceMM
	}
	if p.BoundaryKMM <= 0 {
		p.BoundaryKMM = d.BoundaryKMM
	}
	return p
}

// Assessment is the derived protection and safety picture at the fault
// point.
type Assessment struct {
	ClearingTimeS          float64
	Coordination           Coordination
	ArcEnergyCalCm2        float64
	PPECategory            int
	RemoteOperationAdvised bool
	ArcFlashBoundaryMM     float64
	// ThermalStressA2S is the I^2*t let-through on the interrupting
	// current; MechanicalStressKA2 is proportional to the peak squared.
	ThermalStressA2S    float64
	MechanicalStressKA2 float64
}

// Assess derives the full protection and stress picture from the duty
// currents and the device settings.
func Assess(currents fault.Currents, settings Settings, params Params) Assessment {
	params = params.withDefaults()

	clearing := settings.TimeDelayS + params.BreakerOpeningS
	energy := arcEnergy(currents.InterruptingA, clearing, params)
	category, remote := ppeCategory(energy)
	peakKA := currents.AsymmetricalPeakA / 1000

	return Assessment{
		ClearingTimeS:          clearing,
		Coordination:           classify(clearing, currents.SymmetricalA, settings.PickupA),
		ArcEnergyCalCm2:        energy,
		PPECategory:            category,
		RemoteOperationAdvised: remote,
		ArcFlashBoundaryMM:     params.BoundaryKMM * math.Sqrt(energy),
		ThermalStressA2S:       currents.InterruptingA * currents.InterruptingA * clearing,
		MechanicalStressKA2:    peakKA * peakKA,
	}
}

// arcEnergy is a simplified IEEE-1584-style incident energy in cal/cm^2:
//
//	E = k * (I/1000)^0.677 * (t*1000)^0.54
//
// scaled by the inverse square of the working distance against the
// reference distance.
func arcEnergy(interruptingA, clearingS float64, params Params) float64 {
	if interruptingA <= 0 || clearingS <= 0 {
		return 0
	}
	base := params.ArcEnergyK *
		math.Pow(interruptingA/1000, 0.677) *
		math.Pow(clearingS*1000, 0.54)
	scale := params.ReferenceDistanceMM / params.WorkingDistanceMM
	return base * scale * scale
}

// classify applies the coordination bands: adequate needs fast clearing and
// a healthy margin over pickup, marginal is clearing under half a second,
// anything slower is inadequate.
func classify(clearingS, symmetricalA, pickupA float64) Coordination {
	if clearingS < 0.1 && pickupA > 0 && symmetricalA > 10*pickupA {
		return CoordinationAdequate
	}
	if clearingS < 0.5 {
		return CoordinationMarginal
	}
	return CoordinationInadequate
}

// ppeCategory bands arc energy into PPE categories. Category 4 work should
// be done remotely.
func ppeCategory(energyCalCm2 float64) (category int, remote bool) {
	switch {
	case energyCalCm2 < 1.2:
		return 1, false
	case energyCalCm2 < 8.0:
		return 2, false
	case energyCalCm2 < 25.0:
		return 3, false
	default:
		return 4, true
	}
}
