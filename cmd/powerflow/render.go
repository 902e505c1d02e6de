package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amberline/powerflow/pkg/analysis"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 2).
			MarginRight(2)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00FF00")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true)

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	recStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginLeft(2)
)

func verdict(s string) string {
	switch s {
	case "stable", "adequate", "converged", "minor":
		return okStyle.Render(s)
	case "marginal", "moderate":
		return warnStyle.Render(s)
	default:
		return badStyle.Render(s)
	}
}

func renderShortCircuit(res *analysis.ShortCircuitResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Short-Circuit Study"))
	b.WriteString(fmt.Sprintf("  run %s\n\n", res.RunID))

	currents := fmt.Sprintf(`Fault Currents (%s, %s)
Symmetrical RMS:    %8.2f kA
Asymmetrical peak:  %8.2f kA
Momentary duty:     %8.2f kA
Interrupting duty:  %8.2f kA
Steady state:       %8.2f kA
X/R at fault:       %8.2f`,
		res.FaultType, res.Earthing,
		res.Currents.SymmetricalA/1000,
		res.Currents.AsymmetricalPeakA/1000,
		res.Currents.MomentaryA/1000,
		res.Currents.InterruptingA/1000,
		res.Currents.SteadyStateA/1000,
		res.Currents.XOverR,
	)

	impedances := fmt.Sprintf(`Path Impedance (ohms)
Source:        %6.4f + j%6.4f
Transformers:  %6.4f + j%6.4f
Conductors:    %6.4f + j%6.4f
Total:         %6.4f + j%6.4f  (|Z| = %.4f)`,
		res.Impedance.Source.R, res.Impedance.Source.X,
		res.Impedance.Transformers.R, res.Impedance.Transformers.X,
		res.Impedance.Conductors.R, res.Impedance.Conductors.X,
		res.Impedance.Total.R, res.Impedance.Total.X,
		res.Impedance.Total.Magnitude(),
	)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(currents), boxStyle.Render(impedances)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Protection:  clears in %.3f s, coordination %s, PPE category %d",
		res.Protection.ClearingTimeS, verdict(string(res.Protection.Coordination)),
		res.Protection.PPECategory))
	if res.Protection.RemoteOperationAdvised {
		b.WriteString("  " + badStyle.Render("(remote operation advised)"))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Arc flash:   %.1f cal/cm2 at the working distance, boundary %.0f mm\n",
		res.Protection.ArcEnergyCalCm2, res.Protection.ArcFlashBoundaryMM))

	switchgear := res.Switchgear
	if switchgear.RecommendedRatingKA > 0 {
		b.WriteString(fmt.Sprintf("Switchgear:  %.1f kA duty on a %.1f kA frame (%.0f%% utilised), %s\n",
			switchgear.RequiredBreakingKA, switchgear.RecommendedRatingKA,
			switchgear.UtilisationPercent, verdict(string(switchgear.Stability))))
	} else {
		b.WriteString(fmt.Sprintf("Switchgear:  %.1f kA duty exceeds every standard rating, %s\n",
			switchgear.RequiredBreakingKA, verdict(string(switchgear.Stability))))
	}

	b.WriteString(fmt.Sprintf("Voltage sag: source terminal retains %.0f%% during the fault (%s)\n",
		res.VoltageProfile.SourceRetainedPercent, verdict(string(res.VoltageProfile.Sag))))

	b.WriteString(renderRecommendations(res.Recommendations))
	return b.String()
}

func renderLoadFlow(res *analysis.LoadFlowResult) string {
	var b strings.Builder
	sol := res.Solution

	b.WriteString(titleStyle.Render("Load-Flow Study"))
	b.WriteString(fmt.Sprintf("  run %s\n\n", res.RunID))

	b.WriteString(fmt.Sprintf("Solver: %s after %d iterations, worst mismatch %.2g pu\n\n",
		verdict(sol.State.String()), sol.Iterations, sol.MaxMismatchPU))

	var buses strings.Builder
	buses.WriteString("Bus Voltages\n")
	for _, bus := range sol.Buses {
		marker := " "
		if !bus.WithinTolerance {
			marker = badStyle.Render("!")
		}
		buses.WriteString(fmt.Sprintf("%s %-12s %6.4f pu  %7.1f V  %+6.2f deg\n",
			marker, bus.BusID, bus.VoltagePU, bus.VoltageV, bus.AngleDeg))
	}

	var branches strings.Builder
	branches.WriteString("Branch Flows\n")
	for _, br := range sol.Branches {
		marker := " "
		if br.Overloaded {
			marker = badStyle.Render("!")
		}
		loading := "unrated"
		if br.LoadingPercent > 0 {
			loading = fmt.Sprintf("%5.1f%%", br.LoadingPercent)
		}
		branches.WriteString(fmt.Sprintf("%s %-12s %8.1f A  %7.3f MW  %s\n",
			marker, br.BranchID, br.CurrentA, br.PowerMW, loading))
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(strings.TrimRight(buses.String(), "\n")),
		boxStyle.Render(strings.TrimRight(branches.String(), "\n"))))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Balance: %.3f MW generated, %.3f MW load, %.3f MW losses\n",
		sol.Summary.TotalGenerationMW, sol.Summary.TotalLoadMW, sol.Summary.TotalLossesMW))

	if c := res.Contingency; c != nil {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Single-Outage Resilience"))
		b.WriteString("\n")
		if len(c.CriticalBranches) > 0 {
			b.WriteString(badStyle.Render(fmt.Sprintf(
				"No N-1 redundancy: losing %s splits the network\n",
				strings.Join(c.CriticalBranches, ", "))))
		} else {
			b.WriteString(okStyle.Render("Every single branch outage leaves the network connected\n"))
		}
		b.WriteString(fmt.Sprintf("Loadability margin: %.1f%%   Voltage stability margin: %.1f%%\n",
			c.LoadabilityMarginPercent, c.VoltageStabilityMarginPercent))
		if len(c.Outages) > 0 {
			worst := c.Outages[0]
			b.WriteString(fmt.Sprintf("Worst outage: %s (severity %.1f)\n", worst.BranchID, worst.Severity))
		}
	}

	b.WriteString(renderRecommendations(res.Recommendations))
	return b.String()
}

func renderRecommendations(recs []string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Recommendations"))
	b.WriteString("\n")
	for _, rec := range recs {
		b.WriteString(recStyle.Render("- " + rec))
		b.WriteString("\n")
	}
	return b.String()
}
