package network

import (
	"errors"
	"testing"
)

func twoBusNetwork() Network {
	return Network{
		BaseMVA:      1,
		BaseVoltageV: 400,
		Buses: []Bus{
			{ID: "grid", Role: RoleSlack, VoltagePU: 1.0},
			{ID: "board", Role: RolePQ, LoadMW: 0.05},
		},
		Branches: []Branch{
			{ID: "feeder", From: "grid", To: "board", Resistance: 0.1, Reactance: 0.2},
		},
	}
}

// TestValidate_TwoBusNetwork tests that a minimal healthy network passes
func TestValidate_TwoBusNetwork(t *testing.T) {
	if err := Validate(twoBusNetwork()); err != nil {
		t.Fatalf("Validate failed on healthy network: %v", err)
	}
}

// TestValidate_NoSlackBus tests rejection when no bus holds the reference
func TestValidate_NoSlackBus(t *testing.T) {
	n := twoBusNetwork()
	n.Buses[0].Role = RolePQ

	err := Validate(n)
	if err == nil {
		t.Fatal("expected TopologyError for missing slack bus")
	}
	if !errors.Is(err, ErrTopology) {
		t.Errorf("expected ErrTopology, got %v", err)
	}
}

// TestValidate_TwoSlackBuses tests rejection of a duplicate reference
func TestValidate_TwoSlackBuses(t *testing.T) {
	n := twoBusNetwork()
	n.Buses[1].Role = RoleSlack

	err := Validate(n)
	if !errors.Is(err, ErrTopology) {
		t.Fatalf("expected ErrTopology for two slack buses, got %v", err)
	}
	var topo *TopologyError
	if !errors.As(err, &topo) {
		t.Fatal("expected a *TopologyError")
	}
}

// TestValidate_DanglingBranch tests rejection of a branch to an unknown bus
func TestValidate_DanglingBranch(t *testing.T) {
	n := twoBusNetwork()
	n.Branches = append(n.Branches, Branch{ID: "ghost", From: "grid", To: "nowhere"})

	if err := Validate(n); !errors.Is(err, ErrTopology) {
		t.Fatalf("expected ErrTopology for dangling branch, got %v", err)
	}
}

// TestValidate_UnreachableBus tests rejection of an island
func TestValidate_UnreachableBus(t *testing.T) {
	n := twoBusNetwork()
	n.Buses = append(n.Buses, Bus{ID: "island", Role: RolePQ})

	if err := Validate(n); !errors.Is(err, ErrTopology) {
		t.Fatalf("expected ErrTopology for unreachable bus, got %v", err)
	}
}

// TestValidate_NegativeImpedance tests rejection of negative branch values
func TestValidate_NegativeImpedance(t *testing.T) {
	n := twoBusNetwork()
	n.Branches[0].Reactance = -0.2

	if err := Validate(n); !errors.Is(err, ErrTopology) {
		t.Fatalf("expected ErrTopology for negative reactance, got %v", err)
	}
}

// TestValidate_DuplicateBusID tests rejection of duplicate identifiers
func TestValidate_DuplicateBusID(t *testing.T) {
	n := twoBusNetwork()
	n.Buses = append(n.Buses, Bus{ID: "board", Role: RolePQ})
	n.Branches = append(n.Branches, Branch{ID: "f2", From: "grid", To: "board", Resistance: 0.1})

	if err := Validate(n); !errors.Is(err, ErrTopology) {
		t.Fatalf("expected ErrTopology for duplicate bus id, got %v", err)
	}
}

// TestWithoutBranch_LeavesOriginalUntouched tests snapshot immutability
func TestWithoutBranch_LeavesOriginalUntouched(t *testing.T) {
	n := twoBusNetwork()
	reduced := n.WithoutBranch("feeder")

	if len(reduced.Branches) != 0 {
		t.Errorf("expected branch removed, got %d branches", len(reduced.Branches))
	}
	if len(n.Branches) != 1 {
		t.Errorf("original snapshot was mutated: %d branches", len(n.Branches))
	}
}

// TestIndex_Reachable tests the BFS traversal from the slack bus
func TestIndex_Reachable(t *testing.T) {
	n := twoBusNetwork()
	n.Buses = append(n.Buses, Bus{ID: "far", Role: RolePQ})
	n.Branches = append(n.Branches, Branch{ID: "tail", From: "board", To: "far", Resistance: 0.1})

	idx, err := BuildIndex(n)
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}

	visited := idx.Reachable()
	for _, id := range []string{"grid", "board", "far"} {
		if !visited[id] {
			t.Errorf("bus %s should be reachable from slack", id)
		}
	}
	if unreachable := idx.Unreachable(n); len(unreachable) != 0 {
		t.Errorf("expected no unreachable buses, got %v", unreachable)
	}
}

// TestDegenerateNetworkError_Unwrap tests the sentinel mapping
func TestDegenerateNetworkError_Unwrap(t *testing.T) {
	err := &DegenerateNetworkError{Detail: "zero impedance"}
	if !errors.Is(err, ErrDegenerate) {
		t.Error("DegenerateNetworkError should unwrap to ErrDegenerate")
	}
}
