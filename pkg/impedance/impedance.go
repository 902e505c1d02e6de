// Package impedance reduces a path of sources, transformers, and conductors
// into a single equivalent series impedance seen from a point of interest,
// honoring unit bases. Series addition is commutative and associative, so
// contribution order never changes the total.
package impedance

import "math"

// Impedance is a complex series impedance in ohms, split into resistance and
// reactance.
type Impedance struct {
	R float64 `yaml:"resistance_ohms"`
	X float64 `yaml:"reactance_ohms"`
}

// Magnitude returns |Z| in ohms.
func (z Impedance) Magnitude() float64 {
	return math.Hypot(z.R, z.X)
}

// XOverR returns the reactance-to-resistance ratio. A purely reactive
// impedance reports +Inf; a zero impedance reports 0.
func (z Impedance) XOverR() float64 {
	if z.R == 0 {
		if z.X == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return z.X / z.R
}

// Add returns the series combination of two impedances.
func (z Impedance) Add(o Impedance) Impedance {
	return Impedance{R: z.R + o.R, X: z.X + o.X}
}

// Series sums any number of series contributions.
func Series(parts ...Impedance) Impedance {
	var total Impedance
	for _, p := range parts {
		total = total.Add(p)
	}
	return total
}

// Parallel combines two impedances in parallel using complex arithmetic.
// If either impedance is zero the combination is zero.
func Parallel(a, b Impedance) Impedance {
	if a.Magnitude() == 0 || b.Magnitude() == 0 {
		return Impedance{}
	}
	za := complex(a.R, a.X)
	zb := complex(b.R, b.X)
	zp := za * zb / (za + zb)
	return Impedance{R: real(zp), X: imag(zp)}
}

// FromXOverR decomposes an impedance magnitude into R and X given an X/R
// ratio. An X/R of zero yields a purely resistive impedance.
func FromXOverR(magnitudeOhms, xOverR float64) Impedance {
	if magnitudeOhms == 0 {
		return Impedance{}
	}
	if xOverR <= 0 {
		return Impedance{R: magnitudeOhms}
	}
	r := magnitudeOhms / math.Sqrt(1+xOverR*xOverR)
	return Impedance{R: r, X: r * xOverR}
}
