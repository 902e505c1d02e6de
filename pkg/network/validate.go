package network

import "fmt"

// Validate checks the structural integrity of a snapshot before any numeric
// work begins. It is a pure check: no side effects, no partial results.
//
// The checks, in order:
//   - exactly one slack bus
//   - every branch references buses that exist
//   - every bus is reachable from the slack bus
//   - no negative resistance, reactance, or impedance anywhere
func Validate(n Network) error {
	if len(n.Buses) == 0 {
		return &TopologyError{Reason: "network has no buses"}
	}

	for _, br := range n.Branches {
		if br.Resistance < 0 || br.Reactance < 0 {
			return &TopologyError{Reason: fmt.Sprintf("branch %s has negative impedance", br.ID)}
		}
	}
	for i, src := range n.Sources {
		if src.ImpedanceOhms < 0 {
			return &TopologyError{Reason: fmt.Sprintf("source %d has negative impedance", i)}
		}
		if src.XOverR < 0 {
			return &TopologyError{Reason: fmt.Sprintf("source %d has negative X/R ratio", i)}
		}
	}
	for i, tx := range n.Transformers {
		if tx.ImpedancePercent < 0 {
			return &TopologyError{Reason: fmt.Sprintf("transformer %d has negative impedance", i)}
		}
	}

	idx, err := BuildIndex(n)
	if err != nil {
		return err
	}

	if unreachable := idx.Unreachable(n); len(unreachable) > 0 {
		return &TopologyError{
			Reason: fmt.Sprintf("buses not reachable from slack bus %s: %v", idx.SlackID(), unreachable),
		}
	}

	return nil
}
