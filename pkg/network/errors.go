package network

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy. Callers match with
// errors.Is; the typed errors below carry the detail.
var (
	ErrTopology   = errors.New("invalid network topology")
	ErrDegenerate = errors.New("degenerate network impedance")
)

// TopologyError reports a structural problem found before any numeric work:
// wrong slack-bus count, a branch referencing an unknown bus, an unreachable
// bus, or a negative impedance value.
type TopologyError struct {
	Reason string
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("invalid network topology: %s", e.Reason)
}

func (e *TopologyError) Unwrap() error { return ErrTopology }

// DegenerateNetworkError reports a numerically degenerate input, typically a
// zero total impedance that would otherwise produce an unbounded fault
// current or an undefined voltage.
type DegenerateNetworkError struct {
	Detail        string
	MagnitudeOhms float64
}

func (e *DegenerateNetworkError) Error() string {
	return fmt.Sprintf("degenerate network: %s (|Z| = %g ohm)", e.Detail, e.MagnitudeOhms)
}

func (e *DegenerateNetworkError) Unwrap() error { return ErrDegenerate }
