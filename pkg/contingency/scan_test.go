package contingency

import (
	"math/rand"
	"testing"

	"github.com/amberline/powerflow/pkg/loadflow"
	"github.com/amberline/powerflow/pkg/network"
)

// ringNetwork is a five-bus, five-branch loop: removing any single branch
// leaves every bus reachable.
func ringNetwork() network.Network {
	buses := []network.Bus{{ID: "grid", Role: network.RoleSlack, VoltagePU: 1.0}}
	for _, id := range []string{"b1", "b2", "b3", "b4"} {
		buses = append(buses, network.Bus{ID: id, Role: network.RolePQ, LoadMW: 0.02, LoadMVAr: 0.005})
	}
	return network.Network{
		BaseMVA:      1,
		BaseVoltageV: 400,
		Buses:        buses,
		Branches: []network.Branch{
			{ID: "r1", From: "grid", To: "b1", Resistance: 0.02, Reactance: 0.04},
			{ID: "r2", From: "b1", To: "b2", Resistance: 0.02, Reactance: 0.04},
			{ID: "r3", From: "b2", To: "b3", Resistance: 0.02, Reactance: 0.04},
			{ID: "r4", From: "b3", To: "b4", Resistance: 0.02, Reactance: 0.04},
			{ID: "r5", From: "b4", To: "grid", Resistance: 0.02, Reactance: 0.04},
		},
	}
}

// radialNetwork hangs everything off one spur.
func radialNetwork() network.Network {
	return network.Network{
		BaseMVA:      1,
		BaseVoltageV: 400,
		Buses: []network.Bus{
			{ID: "grid", Role: network.RoleSlack, VoltagePU: 1.0},
			{ID: "load", Role: network.RolePQ, LoadMW: 0.05},
		},
		Branches: []network.Branch{
			{ID: "spur", From: "grid", To: "load", Resistance: 0.1, Reactance: 0.2},
		},
	}
}

// TestScan_RingSurvivesAnySingleOutage tests N-1 redundancy detection
func TestScan_RingSurvivesAnySingleOutage(t *testing.T) {
	report, err := Scan(ringNetwork(), loadflow.DefaultCriteria(), 2)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(report.CriticalBranches) != 0 {
		t.Errorf("ring network should have no critical outages, got %v", report.CriticalBranches)
	}
	if len(report.Outages) != 5 {
		t.Errorf("expected 5 outage records, got %d", len(report.Outages))
	}
	if report.LoadabilityMarginPercent <= 0 {
		t.Errorf("lightly loaded ring should keep loadability headroom, got %g",
			report.LoadabilityMarginPercent)
	}
	if report.VoltageStabilityMarginPercent <= 0 {
		t.Errorf("lightly loaded ring should keep voltage headroom, got %g",
			report.VoltageStabilityMarginPercent)
	}
}

// TestScan_RadialSpurIsCritical tests the fail-soft disconnection record
func TestScan_RadialSpurIsCritical(t *testing.T) {
	report, err := Scan(radialNetwork(), loadflow.DefaultCriteria(), 2)
	if err != nil {
		t.Fatalf("Scan must fail soft on disconnection, got %v", err)
	}

	if len(report.CriticalBranches) != 1 || report.CriticalBranches[0] != "spur" {
		t.Fatalf("expected spur flagged critical, got %v", report.CriticalBranches)
	}

	outage := report.Outages[0]
	if !outage.Critical || outage.BranchID != "spur" {
		t.Errorf("worst outage should be the critical spur, got %+v", outage)
	}
	if len(outage.DisconnectedBuses) != 1 || outage.DisconnectedBuses[0] != "load" {
		t.Errorf("expected load bus recorded as disconnected, got %v", outage.DisconnectedBuses)
	}
	if report.LoadabilityMarginPercent != 0 || report.VoltageStabilityMarginPercent != 0 {
		t.Error("margins must collapse to zero when a single outage splits the network")
	}
}

// TestScan_OrderIndependentReduction tests that scan order cannot change
// the ranking or the margins
func TestScan_OrderIndependentReduction(t *testing.T) {
	base := ringNetwork()
	// Break the ring's symmetry so one outage is clearly the worst: a thin
	// mid-ring section and a heavy load right next to the slack.
	base.Branches[2].Resistance = 0.4
	base.Branches[2].Reactance = 0.8
	base.Buses[1].LoadMW = 0.08

	reference, err := Scan(base, loadflow.DefaultCriteria(), 1)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		shuffled := base
		shuffled.Branches = make([]network.Branch, len(base.Branches))
		copy(shuffled.Branches, base.Branches)
		rng.Shuffle(len(shuffled.Branches), func(i, j int) {
			shuffled.Branches[i], shuffled.Branches[j] = shuffled.Branches[j], shuffled.Branches[i]
		})

		report, err := Scan(shuffled, loadflow.DefaultCriteria(), 4)
		if err != nil {
			t.Fatalf("Scan failed on shuffled order: %v", err)
		}

		if report.Outages[0].BranchID != reference.Outages[0].BranchID {
			t.Errorf("worst branch changed with scan order: %s vs %s",
				report.Outages[0].BranchID, reference.Outages[0].BranchID)
		}
		if diff := report.LoadabilityMarginPercent - reference.LoadabilityMarginPercent; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("loadability margin changed with scan order: %g vs %g",
				report.LoadabilityMarginPercent, reference.LoadabilityMarginPercent)
		}
	}
}

// TestScan_InvalidBaseNetwork tests eager validation
func TestScan_InvalidBaseNetwork(t *testing.T) {
	n := radialNetwork()
	n.Buses[0].Role = network.RolePQ // no slack left

	if _, err := Scan(n, loadflow.DefaultCriteria(), 1); err == nil {
		t.Fatal("expected TopologyError for invalid base network")
	}
}
