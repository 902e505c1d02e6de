package impedance

import (
	"github.com/amberline/powerflow/pkg/network"
)

// Conductor describes a cable run by its per-km parameters and length.
// A zero-length conductor contributes zero impedance; that is valid input,
// not an error.
type Conductor struct {
	ID              string  `yaml:"id"`
	LengthKm        float64 `yaml:"length_km" validate:"gte=0"`
	ResistancePerKm float64 `yaml:"resistance_per_km" validate:"gte=0"`
	ReactancePerKm  float64 `yaml:"reactance_per_km" validate:"gte=0"`
}

// Aggregate is the reduced equivalent of a source-to-fault path.
type Aggregate struct {
	Source       Impedance
	Transformers Impedance
	Conductors   Impedance
	Total        Impedance
}

// FromSource decomposes a source's impedance magnitude by its X/R ratio.
func FromSource(s network.Source) Impedance {
	return FromXOverR(s.ImpedanceOhms, s.XOverR)
}

// FromTransformer scales a transformer's percentage impedance to ohms at the
// system voltage: Z = %Z/100 x V^2/S, with S the transformer rating in VA.
// A zero-impedance transformer contributes nothing.
func FromTransformer(t network.Transformer, systemVoltageV float64) Impedance {
	if t.ImpedancePercent == 0 || t.RatingKVA == 0 {
		return Impedance{}
	}
	zOhms := (t.ImpedancePercent / 100) * systemVoltageV * systemVoltageV / (t.RatingKVA * 1000)
	return FromXOverR(zOhms, t.XOverR)
}

// FromConductor scales per-km parameters by run length.
func FromConductor(c Conductor) Impedance {
	return Impedance{
		R: c.ResistancePerKm * c.LengthKm,
		X: c.ReactancePerKm * c.LengthKm,
	}
}

// AggregatePath reduces a full source-to-fault path into one equivalent
// series impedance. Individual zero contributions are fine, but a total of
// exactly zero would turn into an infinite fault current downstream, so that
// case fails with a DegenerateNetworkError instead.
func AggregatePath(source network.Source, transformers []network.Transformer, conductors []Conductor, systemVoltageV float64) (Aggregate, error) {
	agg := Aggregate{Source: FromSource(source)}

	for _, tx := range transformers {
		agg.Transformers = agg.Transformers.Add(FromTransformer(tx, systemVoltageV))
	}
	for _, c := range conductors {
		agg.Conductors = agg.Conductors.Add(FromConductor(c))
	}

	agg.Total = Series(agg.Source, agg.Transformers, agg.Conductors)
	if agg.Total.Magnitude() == 0 {
		return Aggregate{}, &network.DegenerateNetworkError{
			Detail:        "aggregated path impedance is zero",
			MagnitudeOhms: 0,
		}
	}
	return agg, nil
}
