package analysis

import (
	"fmt"

	"github.com/amberline/powerflow/pkg/fault"
	"github.com/amberline/powerflow/pkg/protection"
)

// Rule-based recommendation text. These are advisory strings for the
// surrounding application to present; the engine makes no decisions with
// them.

func shortCircuitRecommendations(res *ShortCircuitResult) []string {
	var recs []string

	switch res.Switchgear.Stability {
	case StabilityAtRisk:
		recs = append(recs, fmt.Sprintf(
			"Prospective fault level %.1f kA exceeds the largest standard breaking capacity (%.1f kA); increase upstream impedance or split the board before energising.",
			res.Switchgear.RequiredBreakingKA, breakingCapacityStepsKA[len(breakingCapacityStepsKA)-1]))
	case StabilityMarginal:
		recs = append(recs, fmt.Sprintf(
			"Switchgear utilisation is %.0f%% of the %.1f kA rating; consider the next rating step to restore headroom.",
			res.Switchgear.UtilisationPercent, res.Switchgear.RecommendedRatingKA))
	}

	switch res.Protection.Coordination {
	case protection.CoordinationInadequate:
		recs = append(recs, fmt.Sprintf(
			"Protection clears in %.2f s, which is inadequate for this fault level; reduce the time delay or fit a faster device.",
			res.Protection.ClearingTimeS))
	case protection.CoordinationMarginal:
		recs = append(recs, "Protection coordination is marginal; verify discrimination with the upstream device and consider a lower pickup setting.")
	}

	if res.Protection.RemoteOperationAdvised {
		recs = append(recs, fmt.Sprintf(
			"Calculated incident energy %.1f cal/cm2 falls in PPE category 4; plan for remote switching rather than live working.",
			res.Protection.ArcEnergyCalCm2))
	}

	if res.FaultType == fault.SinglePhaseEarth && res.Earthing == fault.EarthingTT {
		recs = append(recs, "TT earth-fault current is limited by the electrode return path; confirm RCD protection rather than relying on overcurrent devices.")
	}

	if res.VoltageProfile.Sag == SagSevere {
		recs = append(recs, fmt.Sprintf(
			"Voltage at the source terminal collapses to %.0f%% during the fault; sensitive loads upstream will see a severe sag until clearance.",
			res.VoltageProfile.SourceRetainedPercent))
	}

	if len(recs) == 0 {
		recs = append(recs, "Fault level, protection coordination, and switchgear rating are all within acceptable limits.")
	}
	return recs
}

func loadFlowRecommendations(res *LoadFlowResult) []string {
	var recs []string
	sol := res.Solution

	if !sol.Converged {
		recs = append(recs, fmt.Sprintf(
			"Load flow did not converge within %d iterations (final mismatch %.2g pu); relax the tolerance, raise the iteration limit, or review the network data.",
			sol.Iterations, sol.MaxMismatchPU))
	}

	for _, busID := range sol.Summary.OutOfToleranceBuses {
		recs = append(recs, fmt.Sprintf(
			"Bus %s sits outside the voltage tolerance band; consider conductor upsizing or moving load closer to the source.", busID))
	}

	for _, branchID := range sol.Summary.OverloadedBranches {
		recs = append(recs, fmt.Sprintf(
			"Branch %s is loaded above its thermal rating; redistribute load or uprate the circuit.", branchID))
	}

	if c := res.Contingency; c != nil {
		for _, branchID := range c.CriticalBranches {
			recs = append(recs, fmt.Sprintf(
				"Loss of branch %s disconnects part of the network; the system has no N-1 redundancy for this circuit.", branchID))
		}
		if len(c.CriticalBranches) == 0 && c.LoadabilityMarginPercent < 20 {
			recs = append(recs, fmt.Sprintf(
				"Loadability margin under the worst single outage is only %.0f%%; plan reinforcement before adding load.",
				c.LoadabilityMarginPercent))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Voltage profile, branch loadings, and single-outage resilience are all within acceptable limits.")
	}
	return recs
}
