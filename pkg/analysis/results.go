package analysis

import (
	"github.com/google/uuid"

	"github.com/amberline/powerflow/pkg/contingency"
	"github.com/amberline/powerflow/pkg/fault"
	"github.com/amberline/powerflow/pkg/impedance"
	"github.com/amberline/powerflow/pkg/loadflow"
	"github.com/amberline/powerflow/pkg/protection"
)

// StabilityRating classifies the fault level against the recommended
// switchgear rating.
type StabilityRating string

const (
	StabilityStable   StabilityRating = "stable"
	StabilityMarginal StabilityRating = "marginal"
	StabilityAtRisk   StabilityRating = "at_risk"
)

// SagClass bands the voltage depression at the source terminal during the
// fault.
type SagClass string

const (
	SagMinor    SagClass = "minor"
	SagModerate SagClass = "moderate"
	SagSevere   SagClass = "severe"
)

// VoltageProfile describes the voltage picture while the fault is on. A
// bolted fault pins the fault point to zero; upstream buses retain whatever
// the impedance divider leaves them.
type VoltageProfile struct {
	FaultPointV           float64
	SourceRetainedPercent float64
	Sag                   SagClass
}

// SwitchgearAssessment compares the fault level against the standard
// breaking-capacity steps.
type SwitchgearAssessment struct {
	RequiredBreakingKA  float64
	RecommendedRatingKA float64
	UtilisationPercent  float64
	Stability           StabilityRating
}

// ShortCircuitResult is the envelope returned by AnalyzeShortCircuit.
type ShortCircuitResult struct {
	RunID     uuid.UUID
	FaultType fault.Type
	Earthing  fault.EarthingSystem

	Impedance      impedance.Aggregate
	Currents       fault.Currents
	VoltageProfile VoltageProfile
	Protection     protection.Assessment
	Switchgear     SwitchgearAssessment

	Recommendations []string
}

// LoadFlowResult is the envelope returned by AnalyzeLoadFlow.
type LoadFlowResult struct {
	RunID uuid.UUID

	Solution    loadflow.Result
	Contingency *contingency.Report

	Recommendations []string
}
