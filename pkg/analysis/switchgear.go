package analysis

// Standard switchgear breaking-capacity steps in kA. Read-only lookup,
// safe for concurrent access.
var breakingCapacityStepsKA = []float64{6, 10, 16, 25, 31.5, 40, 50}

// assessSwitchgear picks the smallest standard rating that covers the
// interrupting duty and classifies the headroom. Above the largest step the
// system is at risk and the recommended rating is left at zero.
func assessSwitchgear(interruptingA float64) SwitchgearAssessment {
	requiredKA := interruptingA / 1000
	out := SwitchgearAssessment{RequiredBreakingKA: requiredKA}

	for _, step := range breakingCapacityStepsKA {
		if requiredKA <= step {
			out.RecommendedRatingKA = step
			break
		}
	}
	if out.RecommendedRatingKA == 0 {
		out.Stability = StabilityAtRisk
		out.UtilisationPercent = 100
		return out
	}

	out.UtilisationPercent = requiredKA / out.RecommendedRatingKA * 100
	switch {
	case out.UtilisationPercent <= 80:
		out.Stability = StabilityStable
	default:
		out.Stability = StabilityMarginal
	}
	return out
}

// classifySag bands the retained voltage at the source terminal.
func classifySag(retainedPercent float64) SagClass {
	switch {
	case retainedPercent < 50:
		return SagSevere
	case retainedPercent < 80:
		return SagModerate
	default:
		return SagMinor
	}
}
