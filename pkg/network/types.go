// Package network defines the value types that describe an electrical
// network snapshot: buses, branches, upstream sources, and transformers.
//
// Networks are immutable once constructed. Every analysis call receives its
// own snapshot and produces fresh result structures, so snapshots are safe to
// share across concurrent analyses without locking.
package network

// BusRole determines how a bus participates in a load-flow solve.
type BusRole string

const (
	// RoleSlack marks the reference bus. Its voltage magnitude and angle are
	// fixed inputs; it absorbs the system power imbalance.
	RoleSlack BusRole = "slack"
	// RolePV marks a generator bus with scheduled active power and a held
	// voltage magnitude.
	RolePV BusRole = "pv"
	// RolePQ marks a load bus with scheduled active and reactive power.
	RolePQ BusRole = "pq"
)

// Bus is a network node at which voltage and injected power are defined.
// Voltage magnitude is per-unit on the network base; the angle is in degrees
// relative to the slack bus.
type Bus struct {
	ID        string  `yaml:"id" validate:"required"`
	Role      BusRole `yaml:"role" validate:"required,oneof=slack pv pq"`
	VoltagePU float64 `yaml:"voltage_pu"`
	AngleDeg  float64 `yaml:"angle_deg"`

	// Scheduled injections. Generation minus load gives the net injection
	// used by the solver.
	GenerationMW   float64 `yaml:"generation_mw"`
	GenerationMVAr float64 `yaml:"generation_mvar"`
	LoadMW         float64 `yaml:"load_mw"`
	LoadMVAr       float64 `yaml:"load_mvar"`
}

// Branch is a series element (cable, line, or transformer tie) connecting two
// buses. Resistance and reactance are total series ohms at the network base
// voltage. RatingMVA is optional; zero means unrated.
type Branch struct {
	ID         string  `yaml:"id" validate:"required"`
	From       string  `yaml:"from" validate:"required"`
	To         string  `yaml:"to" validate:"required"`
	Resistance float64 `yaml:"resistance_ohms" validate:"gte=0"`
	Reactance  float64 `yaml:"reactance_ohms" validate:"gte=0"`
	RatingMVA  float64 `yaml:"rating_mva" validate:"gte=0"`
}

// Source is the Thevenin equivalent of the upstream grid or a generator seen
// at its connection point.
type Source struct {
	NominalVoltageV float64 `yaml:"nominal_voltage_v" validate:"gt=0"`
	ImpedanceOhms   float64 `yaml:"impedance_ohms" validate:"gte=0"`
	XOverR          float64 `yaml:"x_over_r" validate:"gte=0"`
}

// Transformer contributes series impedance when it sits in a fault or
// load-flow path. Its percentage impedance is on its own rating and must be
// rescaled to the system base before it can be combined with anything else.
type Transformer struct {
	ID               string  `yaml:"id"`
	RatingKVA        float64 `yaml:"rating_kva" validate:"gt=0"`
	ImpedancePercent float64 `yaml:"impedance_percent" validate:"gte=0"`
	XOverR           float64 `yaml:"x_over_r" validate:"gte=0"`
}

// Network aggregates everything considered together for one analysis call.
type Network struct {
	// BaseMVA and BaseVoltageV fix the per-unit system.
	BaseMVA      float64 `yaml:"base_mva"`
	BaseVoltageV float64 `yaml:"base_voltage_v"`

	Buses        []Bus         `yaml:"buses"`
	Branches     []Branch      `yaml:"branches"`
	Sources      []Source      `yaml:"sources,omitempty"`
	Transformers []Transformer `yaml:"transformers,omitempty"`
}

// WithoutBranch returns a copy of the network with one branch removed.
// The receiver is left untouched; contingency scanning relies on this.
func (n Network) WithoutBranch(branchID string) Network {
	out := n
	out.Branches = make([]Branch, 0, len(n.Branches))
	for _, b := range n.Branches {
		if b.ID != branchID {
			out.Branches = append(out.Branches, b)
		}
	}
	return out
}

// NetInjectionMW returns generation minus load active power for the bus.
func (b Bus) NetInjectionMW() float64 {
	return b.GenerationMW - b.LoadMW
}

// NetInjectionMVAr returns generation minus load reactive power for the bus.
func (b Bus) NetInjectionMVAr() float64 {
	return b.GenerationMVAr - b.LoadMVAr
}
