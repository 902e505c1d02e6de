package loadflow

import (
	"errors"
	"math"
	"testing"

	"github.com/amberline/powerflow/pkg/network"
)

// twoBusNetwork is the canonical smoke case: a 400 V slack bus feeding a
// 50 kW / 0.2 kVAr load through a 0.1 + j0.2 ohm branch.
func twoBusNetwork() network.Network {
	return network.Network{
		BaseMVA:      1,
		BaseVoltageV: 400,
		Buses: []network.Bus{
			{ID: "grid", Role: network.RoleSlack, VoltagePU: 1.0},
			{ID: "board", Role: network.RolePQ, LoadMW: 0.05, LoadMVAr: 0.0002},
		},
		Branches: []network.Branch{
			{ID: "feeder", From: "grid", To: "board", Resistance: 0.1, Reactance: 0.2},
		},
	}
}

// loadedChainNetwork is a three-section radial chain. The loads are light
// enough that a solution exists, but the chain still needs a healthy number
// of sweeps at tight tolerance.
func loadedChainNetwork() network.Network {
	return network.Network{
		BaseMVA:      1,
		BaseVoltageV: 400,
		Buses: []network.Bus{
			{ID: "grid", Role: network.RoleSlack, VoltagePU: 1.0},
			{ID: "b1", Role: network.RolePQ, LoadMW: 0.02, LoadMVAr: 0.006},
			{ID: "b2", Role: network.RolePQ, LoadMW: 0.02, LoadMVAr: 0.006},
			{ID: "b3", Role: network.RolePQ, LoadMW: 0.02, LoadMVAr: 0.006},
		},
		Branches: []network.Branch{
			{ID: "l1", From: "grid", To: "b1", Resistance: 0.05, Reactance: 0.1},
			{ID: "l2", From: "b1", To: "b2", Resistance: 0.05, Reactance: 0.1},
			{ID: "l3", From: "b2", To: "b3", Resistance: 0.05, Reactance: 0.1},
		},
	}
}

// overloadedChainNetwork asks the same chain to deliver more power than any
// voltage profile can carry past the loadability limit. No solution exists,
// so the solver must stop at the iteration cap with its best estimate.
func overloadedChainNetwork() network.Network {
	n := loadedChainNetwork()
	for i := range n.Buses {
		if n.Buses[i].Role == network.RolePQ {
			n.Buses[i].LoadMW = 0.1
			n.Buses[i].LoadMVAr = 0.03
		}
	}
	return n
}

// TestSolve_TwoBusConverges tests the canonical two-bus case
func TestSolve_TwoBusConverges(t *testing.T) {
	res, err := Solve(twoBusNetwork(), Criteria{TolerancePU: 1e-4, MaxIterations: 20})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if res.State != StateConverged || !res.Converged {
		t.Fatalf("expected convergence, got state %s after %d iterations (mismatch %g)",
			res.State, res.Iterations, res.MaxMismatchPU)
	}
	if res.Iterations > 20 {
		t.Errorf("expected convergence within 20 iterations, took %d", res.Iterations)
	}

	var board BusResult
	for _, b := range res.Buses {
		if b.BusID == "board" {
			board = b
		}
	}
	if board.VoltageV < 380 || board.VoltageV > 400 {
		t.Errorf("board voltage %0.1f V outside expected 380-400 V", board.VoltageV)
	}
	if board.WithinTolerance != true {
		t.Error("board should be inside the +-10%% band")
	}
}

// TestSolve_IterationCapReturnsEstimate tests non-convergence as data
func TestSolve_IterationCapReturnsEstimate(t *testing.T) {
	res, err := Solve(overloadedChainNetwork(), Criteria{TolerancePU: 1e-6, MaxIterations: 1})
	if err != nil {
		t.Fatalf("non-convergence must not be an error, got %v", err)
	}

	if res.State != StateMaxIterationsExceeded {
		t.Fatalf("expected max_iterations_exceeded, got %s", res.State)
	}
	if res.Converged {
		t.Error("result must be tagged unconverged")
	}
	if res.Iterations != 1 {
		t.Errorf("expected iteration count 1, got %d", res.Iterations)
	}
	if len(res.Buses) == 0 {
		t.Error("unconverged result must still carry the best estimate")
	}
}

// TestSolve_InfeasibleLoadNeverConverges tests that an unsatisfiable load
// pattern is reported as the max-iterations state, not as a false solution
func TestSolve_InfeasibleLoadNeverConverges(t *testing.T) {
	res, err := Solve(overloadedChainNetwork(), Criteria{TolerancePU: 1e-4, MaxIterations: 200})
	if err != nil {
		t.Fatalf("infeasibility must not be an error, got %v", err)
	}
	if res.State != StateMaxIterationsExceeded {
		t.Fatalf("expected max_iterations_exceeded, got %s (mismatch %g)", res.State, res.MaxMismatchPU)
	}
	if res.MaxMismatchPU < 1e-4 {
		t.Errorf("reported mismatch %g should exceed the tolerance", res.MaxMismatchPU)
	}
}

// TestSolve_PowerBalance tests generation = load + losses at convergence
func TestSolve_PowerBalance(t *testing.T) {
	res, err := Solve(loadedChainNetwork(), Criteria{TolerancePU: 1e-6, MaxIterations: 100})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !res.Converged {
		t.Fatalf("chain should converge, mismatch %g after %d iterations", res.MaxMismatchPU, res.Iterations)
	}

	imbalance := res.Summary.TotalGenerationMW - res.Summary.TotalLoadMW - res.Summary.TotalLossesMW
	if math.Abs(imbalance) > 1e-4 {
		t.Errorf("power balance violated: gen %g, load %g, losses %g",
			res.Summary.TotalGenerationMW, res.Summary.TotalLoadMW, res.Summary.TotalLossesMW)
	}
}

// TestSolve_BranchFlowMatchesLoad tests flow conservation at a PQ bus
func TestSolve_BranchFlowMatchesLoad(t *testing.T) {
	res, err := Solve(twoBusNetwork(), Criteria{TolerancePU: 1e-8, MaxIterations: 200})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !res.Converged {
		t.Fatal("expected convergence")
	}

	feeder := res.Branches[0]
	delivered := feeder.PowerMW - feeder.LossesMW
	if math.Abs(delivered-0.05) > 1e-4 {
		t.Errorf("power delivered to the load bus %g MW, want 0.05 MW", delivered)
	}
}

// TestSolve_TighterToleranceNeverFewerIterations tests iteration monotonicity
func TestSolve_TighterToleranceNeverFewerIterations(t *testing.T) {
	tolerances := []float64{1e-2, 1e-4, 1e-6, 1e-8}
	last := 0
	for _, tol := range tolerances {
		res, err := Solve(loadedChainNetwork(), Criteria{TolerancePU: tol, MaxIterations: 500})
		if err != nil {
			t.Fatalf("Solve failed at tolerance %g: %v", tol, err)
		}
		if res.Iterations < last {
			t.Errorf("tolerance %g took %d iterations, fewer than the looser run's %d",
				tol, res.Iterations, last)
		}
		last = res.Iterations
	}
}

// TestSolve_ZeroImpedanceBranch tests the degenerate guard
func TestSolve_ZeroImpedanceBranch(t *testing.T) {
	n := twoBusNetwork()
	n.Branches[0].Resistance = 0
	n.Branches[0].Reactance = 0

	_, err := Solve(n, DefaultCriteria())
	if !errors.Is(err, network.ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate for zero-impedance branch, got %v", err)
	}
}

// TestSolve_TwoSlackBuses tests that topology errors surface before iterating
func TestSolve_TwoSlackBuses(t *testing.T) {
	n := twoBusNetwork()
	n.Buses[1].Role = network.RoleSlack

	_, err := Solve(n, DefaultCriteria())
	if !errors.Is(err, network.ErrTopology) {
		t.Fatalf("expected ErrTopology, got %v", err)
	}
}

// TestSolve_NegativeImpedanceRejected tests that a direct Solve call gets
// the full structural validation, not just the index checks
func TestSolve_NegativeImpedanceRejected(t *testing.T) {
	n := twoBusNetwork()
	n.Branches[0].Resistance = -0.1

	_, err := Solve(n, DefaultCriteria())
	if !errors.Is(err, network.ErrTopology) {
		t.Fatalf("expected ErrTopology for negative impedance, got %v", err)
	}
}

// TestSolve_UnreachableBusRejected tests that island buses fail the solve
// instead of silently sitting at their flat start
func TestSolve_UnreachableBusRejected(t *testing.T) {
	n := twoBusNetwork()
	n.Buses = append(n.Buses, network.Bus{ID: "island", Role: network.RolePQ, LoadMW: 0.01})

	_, err := Solve(n, DefaultCriteria())
	if !errors.Is(err, network.ErrTopology) {
		t.Fatalf("expected ErrTopology for unreachable bus, got %v", err)
	}
}

// TestSolve_OverloadedBranchFlagged tests rating checks
func TestSolve_OverloadedBranchFlagged(t *testing.T) {
	n := twoBusNetwork()
	n.Branches[0].RatingMVA = 0.01 // rating far below the 50 kW flow

	res, err := Solve(n, DefaultCriteria())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(res.Summary.OverloadedBranches) != 1 || res.Summary.OverloadedBranches[0] != "feeder" {
		t.Errorf("expected feeder flagged overloaded, got %v", res.Summary.OverloadedBranches)
	}
	if !res.Branches[0].Overloaded || res.Branches[0].LoadingPercent <= 100 {
		t.Errorf("expected loading above 100%%, got %g", res.Branches[0].LoadingPercent)
	}
}

// TestSolve_PVBusHoldsMagnitude tests the PV update rule
func TestSolve_PVBusHoldsMagnitude(t *testing.T) {
	n := loadedChainNetwork()
	n.Buses[2] = network.Bus{ID: "b2", Role: network.RolePV, VoltagePU: 1.02, GenerationMW: 0.04}

	res, err := Solve(n, Criteria{TolerancePU: 1e-6, MaxIterations: 200})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !res.Converged {
		t.Fatalf("expected convergence, mismatch %g", res.MaxMismatchPU)
	}
	for _, b := range res.Buses {
		if b.BusID == "b2" && math.Abs(b.VoltagePU-1.02) > 1e-6 {
			t.Errorf("PV bus should hold 1.02 pu, got %g", b.VoltagePU)
		}
	}
}

// TestState_String tests the state machine labels
func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateInitializing:          "initializing",
		StateIterating:             "iterating",
		StateConverged:             "converged",
		StateMaxIterationsExceeded: "max_iterations_exceeded",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
