package loadflow

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/amberline/powerflow/pkg/network"
)

// Fallback bases when the snapshot leaves them unset: a 400 V LV system on a
// 1 MVA base.
const (
	fallbackBaseMVA      = 1.0
	fallbackBaseVoltageV = 400.0
)

// Solve runs a Gauss-Seidel load flow over the snapshot. The slack bus holds
// its specified voltage and angle; every other bus starts flat and is swept
// until the largest per-bus power mismatch drops below the tolerance or the
// iteration cap is hit.
//
// The snapshot is validated before any numeric work, so a negative impedance
// or an unreachable bus is rejected here even when the caller skipped
// network.Validate. Structural problems surface as TopologyError; a
// zero-impedance branch surfaces as DegenerateNetworkError. Non-convergence
// is not an error: the result is tagged StateMaxIterationsExceeded and
// carries the last estimate.
func Solve(n network.Network, criteria Criteria) (*Result, error) {
	criteria = criteria.withDefaults()

	if err := network.Validate(n); err != nil {
		return nil, err
	}
	idx, err := network.BuildIndex(n)
	if err != nil {
		return nil, err
	}

	baseMVA := n.BaseMVA
	if baseMVA <= 0 {
		baseMVA = fallbackBaseMVA
	}
	baseV := n.BaseVoltageV
	if baseV <= 0 {
		baseV = fallbackBaseVoltageV
	}
	zBase := baseV * baseV / (baseMVA * 1e6)

	nb := len(n.Buses)

	// Bus admittance matrix from branch series impedances, in per-unit.
	ybus := make([][]complex128, nb)
	for i := range ybus {
		ybus[i] = make([]complex128, nb)
	}
	branchAdmittance := make([]complex128, len(n.Branches))
	for k, br := range n.Branches {
		zpu := complex(br.Resistance/zBase, br.Reactance/zBase)
		if cmplx.Abs(zpu) == 0 {
			return nil, &network.DegenerateNetworkError{
				Detail: fmt.Sprintf("branch %s has zero series impedance", br.ID),
			}
		}
		y := 1 / zpu
		branchAdmittance[k] = y

		i, _ := idx.BusPosition(br.From)
		j, _ := idx.BusPosition(br.To)
		ybus[i][i] += y
		ybus[j][j] += y
		ybus[i][j] -= y
		ybus[j][i] -= y
	}

	// Scheduled net injections in per-unit.
	sched := make([]complex128, nb)
	for i, bus := range n.Buses {
		sched[i] = complex(bus.NetInjectionMW()/baseMVA, bus.NetInjectionMVAr()/baseMVA)
	}

	// State: Initializing. Slack holds its setpoint, PV buses hold their
	// magnitude, PQ buses flat-start at 1.0 pu.
	state := StateInitializing
	voltages := make([]complex128, nb)
	slackPos, _ := idx.BusPosition(idx.SlackID())
	for i, bus := range n.Buses {
		mag := bus.VoltagePU
		if mag <= 0 {
			mag = 1.0
		}
		switch bus.Role {
		case network.RoleSlack:
			voltages[i] = cmplx.Rect(mag, bus.AngleDeg*math.Pi/180)
		case network.RolePV:
			voltages[i] = complex(mag, 0)
		default:
			voltages[i] = complex(1, 0)
		}
	}

	// State: Iterating.
	state = StateIterating
	iterations := 0
	mismatch := math.Inf(1)

	for iterations < criteria.MaxIterations {
		iterations++

		for i, bus := range n.Buses {
			if bus.Role == network.RoleSlack {
				continue
			}
			if ybus[i][i] == 0 {
				// Validated networks are connected, so every non-slack bus
				// has at least one branch admittance on its diagonal.
				continue
			}

			var coupled complex128
			for j := 0; j < nb; j++ {
				if j != i {
					coupled += ybus[i][j] * voltages[j]
				}
			}

			target := sched[i]
			if bus.Role == network.RolePV {
				// PV buses hold magnitude; reactive power floats to whatever
				// the current voltage estimate implies.
				injected := coupled + ybus[i][i]*voltages[i]
				qCalc := -imag(cmplx.Conj(voltages[i]) * injected)
				target = complex(real(sched[i]), qCalc)
			}

			next := (cmplx.Conj(target)/cmplx.Conj(voltages[i]) - coupled) / ybus[i][i]

			if bus.Role == network.RolePV {
				mag := n.Buses[i].VoltagePU
				if mag <= 0 {
					mag = 1.0
				}
				if abs := cmplx.Abs(next); abs > 0 {
					next = next * complex(mag/abs, 0)
				}
			}
			voltages[i] = next
		}

		mismatch = maxMismatch(n, ybus, voltages, sched)
		if mismatch <= criteria.TolerancePU {
			state = StateConverged
			break
		}
	}

	if state != StateConverged {
		state = StateMaxIterationsExceeded
	}

	res := &Result{
		State:         state,
		Converged:     state == StateConverged,
		Iterations:    iterations,
		MaxMismatchPU: mismatch,
	}
	assembleResults(res, n, idx, ybus, branchAdmittance, voltages, criteria, baseMVA, baseV, slackPos)
	return res, nil
}

// maxMismatch returns the largest apparent-power mismatch across non-slack
// buses. PV buses only answer for active power; their reactive output is
// free.
func maxMismatch(n network.Network, ybus [][]complex128, voltages, sched []complex128) float64 {
	worst := 0.0
	for i, bus := range n.Buses {
		if bus.Role == network.RoleSlack {
			continue
		}
		var injected complex128
		for j := range voltages {
			injected += ybus[i][j] * voltages[j]
		}
		calc := voltages[i] * cmplx.Conj(injected)

		var dm float64
		if bus.Role == network.RolePV {
			dm = math.Abs(real(calc) - real(sched[i]))
		} else {
			dm = cmplx.Abs(calc - sched[i])
		}
		if dm > worst {
			worst = dm
		}
	}
	return worst
}

func assembleResults(res *Result, n network.Network, idx *network.Index, ybus [][]complex128, branchAdmittance []complex128, voltages []complex128, criteria Criteria, baseMVA, baseV float64, slackPos int) {
	band := criteria.VoltageBandPercent / 100
	baseCurrentA := baseMVA * 1e6 / (math.Sqrt(3) * baseV)

	// Slack bus generation is whatever balances the system.
	var slackInjected complex128
	for j := range voltages {
		slackInjected += ybus[slackPos][j] * voltages[j]
	}
	slackCalc := voltages[slackPos] * cmplx.Conj(slackInjected)
	slackGenMW := real(slackCalc)*baseMVA + n.Buses[slackPos].LoadMW

	summary := Summary{MinVoltagePU: math.Inf(1), MaxVoltagePU: math.Inf(-1)}

	res.Buses = make([]BusResult, len(n.Buses))
	for i, bus := range n.Buses {
		vpu := cmplx.Abs(voltages[i])
		genMW := bus.GenerationMW
		if bus.Role == network.RoleSlack {
			genMW = slackGenMW
		}
		within := math.Abs(vpu-1) <= band

		res.Buses[i] = BusResult{
			BusID:           bus.ID,
			VoltagePU:       vpu,
			VoltageV:        vpu * baseV,
			AngleDeg:        cmplx.Phase(voltages[i]) * 180 / math.Pi,
			GenerationMW:    genMW,
			LoadMW:          bus.LoadMW,
			WithinTolerance: within,
		}

		summary.TotalGenerationMW += genMW
		summary.TotalLoadMW += bus.LoadMW
		if vpu < summary.MinVoltagePU {
			summary.MinVoltagePU = vpu
			summary.MinVoltageBus = bus.ID
		}
		if vpu > summary.MaxVoltagePU {
			summary.MaxVoltagePU = vpu
			summary.MaxVoltageBus = bus.ID
		}
		if !within {
			summary.OutOfToleranceBuses = append(summary.OutOfToleranceBuses, bus.ID)
		}
	}

	res.Branches = make([]BranchResult, len(n.Branches))
	for k, br := range n.Branches {
		i, _ := idx.BusPosition(br.From)
		j, _ := idx.BusPosition(br.To)
		y := branchAdmittance[k]

		flow := (voltages[i] - voltages[j]) * y
		sFrom := voltages[i] * cmplx.Conj(flow)
		sTo := voltages[j] * cmplx.Conj(-flow)
		lossMW := (real(sFrom) + real(sTo)) * baseMVA

		flowMVA := cmplx.Abs(sFrom) * baseMVA
		loading := 0.0
		overloaded := false
		if br.RatingMVA > 0 {
			loading = flowMVA / br.RatingMVA * 100
			overloaded = loading > 100
		}

		res.Branches[k] = BranchResult{
			BranchID:       br.ID,
			From:           br.From,
			To:             br.To,
			CurrentA:       cmplx.Abs(flow) * baseCurrentA,
			PowerMW:        real(sFrom) * baseMVA,
			PowerMVAr:      imag(sFrom) * baseMVA,
			LossesMW:       lossMW,
			LoadingPercent: loading,
			Overloaded:     overloaded,
		}

		summary.TotalLossesMW += lossMW
		if overloaded {
			summary.OverloadedBranches = append(summary.OverloadedBranches, br.ID)
		}
	}

	res.Summary = summary
}
