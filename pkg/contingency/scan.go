// Package contingency assesses resilience to single-component loss. The N-1
// scan removes one branch at a time, re-checks connectivity, re-runs the
// load flow, and reduces the per-branch outcomes into a ranked list and
// aggregate margins. Every removal is an independent task over an immutable
// snapshot, so the scan runs across a worker pool with each task writing
// only its own result slot; the final reduction is a sort and min/max fold,
// which no execution order can change.
package contingency

import (
	"math"
	"sort"

	"github.com/amberline/powerflow/pkg/loadflow"
	"github.com/amberline/powerflow/pkg/network"
	"github.com/amberline/powerflow/pkg/parallel"
)

// Severity weights. Disconnection outranks everything; an unsolvable case
// outranks any solvable violation.
const (
	severityCritical     = 1000.0
	severityNonConverged = 500.0
	severityViolation    = 100.0
)

// Outage records the effect of removing one branch.
type Outage struct {
	BranchID string

	// Critical means the removal disconnected part of the network. The
	// scan fails soft: this is a recorded outcome, not an error.
	Critical          bool
	DisconnectedBuses []string

	Converged          bool
	Iterations         int
	WorstVoltagePU     float64
	WorstVoltageBus    string
	MaxLoadingPercent  float64
	OverloadedBranches []string
	ViolatesLimits     bool

	// Severity orders outages worst-first. It is a pure function of the
	// outage outcome, so ranking is reproducible regardless of scan order.
	Severity float64
}

// Report is the aggregate contingency picture.
type Report struct {
	Outages          []Outage
	CriticalBranches []string

	// LoadabilityMarginPercent is the loading headroom left under the
	// worst contingency; VoltageStabilityMarginPercent is the headroom
	// within the voltage band. Both collapse to zero when any single
	// outage disconnects the network or defeats the solver.
	LoadabilityMarginPercent      float64
	VoltageStabilityMarginPercent float64
}

// Scan removes each branch in turn and records the degraded system state.
// The snapshot itself is never mutated; every task works on its own copy.
func Scan(n network.Network, criteria loadflow.Criteria, workers int) (*Report, error) {
	if err := network.Validate(n); err != nil {
		return nil, err
	}

	outages := make([]Outage, len(n.Branches))
	parallel.ForEachIndex(workers, len(n.Branches), func(i int) {
		outages[i] = scanOne(n, n.Branches[i].ID, criteria)
	})

	return reduce(outages, criteria), nil
}

func scanOne(n network.Network, branchID string, criteria loadflow.Criteria) Outage {
	out := Outage{BranchID: branchID}
	contingent := n.WithoutBranch(branchID)

	idx, err := network.BuildIndex(contingent)
	if err != nil {
		// The contingent network shares the base network's buses, so the
		// only way to get here is a structural defect the caller's
		// validation already rules out.
		out.Critical = true
		out.Severity = severityCritical
		return out
	}

	if unreachable := idx.Unreachable(contingent); len(unreachable) > 0 {
		out.Critical = true
		out.DisconnectedBuses = unreachable
		out.Severity = severityCritical + float64(len(unreachable))
		return out
	}

	res, err := loadflow.Solve(contingent, criteria)
	if err != nil {
		out.Severity = severityNonConverged
		return out
	}

	out.Converged = res.Converged
	out.Iterations = res.Iterations
	out.WorstVoltagePU = res.Summary.MinVoltagePU
	out.WorstVoltageBus = res.Summary.MinVoltageBus
	out.OverloadedBranches = res.Summary.OverloadedBranches
	for _, br := range res.Branches {
		if br.LoadingPercent > out.MaxLoadingPercent {
			out.MaxLoadingPercent = br.LoadingPercent
		}
	}
	out.ViolatesLimits = len(res.Summary.OutOfToleranceBuses) > 0 || len(res.Summary.OverloadedBranches) > 0

	if !res.Converged {
		out.Severity = severityNonConverged
		return out
	}

	deviationPercent := math.Abs(1-res.Summary.MinVoltagePU) * 100
	overloadExcess := math.Max(0, out.MaxLoadingPercent-100)
	out.Severity = deviationPercent + overloadExcess
	if out.ViolatesLimits {
		out.Severity += severityViolation
	}
	return out
}

// reduce folds the per-branch outcomes into the ranked report. Worst-case
// selection is a min/max fold, commutative and associative by construction.
func reduce(outages []Outage, criteria loadflow.Criteria) *Report {
	ranked := make([]Outage, len(outages))
	copy(ranked, outages)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Severity != ranked[j].Severity {
			return ranked[i].Severity > ranked[j].Severity
		}
		return ranked[i].BranchID < ranked[j].BranchID
	})

	report := &Report{Outages: ranked}

	band := criteria.VoltageBandPercent
	if band <= 0 {
		band = loadflow.DefaultVoltageBandPercent
	}

	degenerate := false
	worstLoading := 0.0
	worstDeviation := 0.0
	for _, o := range ranked {
		if o.Critical {
			report.CriticalBranches = append(report.CriticalBranches, o.BranchID)
			degenerate = true
			continue
		}
		if !o.Converged {
			degenerate = true
			continue
		}
		if o.MaxLoadingPercent > worstLoading {
			worstLoading = o.MaxLoadingPercent
		}
		if dev := math.Abs(1-o.WorstVoltagePU) * 100; dev > worstDeviation {
			worstDeviation = dev
		}
	}
	sort.Strings(report.CriticalBranches)

	if degenerate {
		return report
	}
	report.LoadabilityMarginPercent = math.Max(0, 100-worstLoading)
	report.VoltageStabilityMarginPercent = math.Max(0, (band-worstDeviation)/band*100)
	return report
}
