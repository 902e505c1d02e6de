// Command powerflow-tui is an interactive browser over one load-flow study:
// tabbed views for bus voltages, branch flows, and the single-outage ranking.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/amberline/powerflow/pkg/analysis"
	"github.com/amberline/powerflow/pkg/config"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#005FAF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	summaryBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00FF00")).
		Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	summaryView view = iota
	busesView
	branchesView
	outagesView
	viewCount
)

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Up, k.Down, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Up, k.Down},
		{k.Quit},
	}
}

type model struct {
	result      *analysis.LoadFlowResult
	currentView view
	busTable    table.Model
	branchTable table.Model
	outageTable table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#005FAF")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func initialModel(res *analysis.LoadFlowResult) model {
	busRows := make([]table.Row, 0, len(res.Solution.Buses))
	for _, b := range res.Solution.Buses {
		tolerance := "ok"
		if !b.WithinTolerance {
			tolerance = "OUT OF BAND"
		}
		busRows = append(busRows, table.Row{
			b.BusID,
			fmt.Sprintf("%.4f", b.VoltagePU),
			fmt.Sprintf("%.1f", b.VoltageV),
			fmt.Sprintf("%+.2f", b.AngleDeg),
			tolerance,
		})
	}

	branchRows := make([]table.Row, 0, len(res.Solution.Branches))
	for _, br := range res.Solution.Branches {
		loading := "unrated"
		if br.LoadingPercent > 0 {
			loading = fmt.Sprintf("%.1f%%", br.LoadingPercent)
		}
		state := "ok"
		if br.Overloaded {
			state = "OVERLOADED"
		}
		branchRows = append(branchRows, table.Row{
			br.BranchID,
			br.From + " -> " + br.To,
			fmt.Sprintf("%.1f", br.CurrentA),
			fmt.Sprintf("%.3f", br.PowerMW),
			loading,
			state,
		})
	}

	var outageRows []table.Row
	if res.Contingency != nil {
		for _, o := range res.Contingency.Outages {
			state := "ok"
			switch {
			case o.Critical:
				state = "SPLITS NETWORK"
			case !o.Converged:
				state = "UNSOLVABLE"
			case o.ViolatesLimits:
				state = "violates limits"
			}
			outageRows = append(outageRows, table.Row{
				o.BranchID,
				fmt.Sprintf("%.1f", o.Severity),
				fmt.Sprintf("%.4f", o.WorstVoltagePU),
				fmt.Sprintf("%.1f%%", o.MaxLoadingPercent),
				state,
			})
		}
	}

	return model{
		result:      res,
		currentView: summaryView,
		busTable: newTable([]table.Column{
			{Title: "Bus", Width: 14},
			{Title: "V (pu)", Width: 8},
			{Title: "V", Width: 9},
			{Title: "Angle", Width: 8},
			{Title: "Tolerance", Width: 12},
		}, busRows),
		branchTable: newTable([]table.Column{
			{Title: "Branch", Width: 14},
			{Title: "Path", Width: 24},
			{Title: "I (A)", Width: 9},
			{Title: "P (MW)", Width: 9},
			{Title: "Loading", Width: 9},
			{Title: "State", Width: 12},
		}, branchRows),
		outageTable: newTable([]table.Column{
			{Title: "Outage", Width: 14},
			{Title: "Severity", Width: 9},
			{Title: "Worst V", Width: 9},
			{Title: "Max load", Width: 9},
			{Title: "Outcome", Width: 16},
		}, outageRows),
		help: help.New(),
		keys: keys,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = viewCount - 1
			} else {
				m.currentView--
			}
		}
	}

	switch m.currentView {
	case busesView:
		m.busTable, cmd = m.busTable.Update(msg)
	case branchesView:
		m.branchTable, cmd = m.branchTable.Update(msg)
	case outagesView:
		m.outageTable, cmd = m.outageTable.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("powerflow - Load-Flow Study Browser"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case summaryView:
		s.WriteString(m.renderSummary())
	case busesView:
		s.WriteString(contentStyle.Render(m.busTable.View()))
	case branchesView:
		s.WriteString(contentStyle.Render(m.branchTable.View()))
	case outagesView:
		s.WriteString(m.renderOutages())
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Summary", "Buses", "Branches", "Outages"}
	var rendered []string
	for i, tab := range tabs {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(tab))
		}
	}
	return contentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

func (m model) renderSummary() string {
	sol := m.result.Solution

	solver := fmt.Sprintf(`Solver
State:        %s
Iterations:   %d
Mismatch:     %.2g pu

Balance
Generation:   %.3f MW
Load:         %.3f MW
Losses:       %.3f MW`,
		sol.State, sol.Iterations, sol.MaxMismatchPU,
		sol.Summary.TotalGenerationMW, sol.Summary.TotalLoadMW, sol.Summary.TotalLossesMW)

	envelope := fmt.Sprintf(`Voltage Envelope
Lowest:   %.4f pu at %s
Highest:  %.4f pu at %s

Violations
Out of band:  %d buses
Overloaded:   %d branches`,
		sol.Summary.MinVoltagePU, sol.Summary.MinVoltageBus,
		sol.Summary.MaxVoltagePU, sol.Summary.MaxVoltageBus,
		len(sol.Summary.OutOfToleranceBuses), len(sol.Summary.OverloadedBranches))

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		summaryBoxStyle.Render(solver), summaryBoxStyle.Render(envelope))

	var recs strings.Builder
	for _, rec := range m.result.Recommendations {
		recs.WriteString("- " + rec + "\n")
	}
	return contentStyle.Render(body) + "\n" + helpStyle.Render(recs.String())
}

func (m model) renderOutages() string {
	c := m.result.Contingency
	if c == nil {
		return contentStyle.Render("Contingency scan was skipped for this study.")
	}

	var header string
	if len(c.CriticalBranches) > 0 {
		header = alertStyle.Render(fmt.Sprintf("No N-1 redundancy: %s",
			strings.Join(c.CriticalBranches, ", ")))
	} else {
		header = okStyle.Render(fmt.Sprintf(
			"N-1 secure. Loadability margin %.1f%%, voltage margin %.1f%%",
			c.LoadabilityMarginPercent, c.VoltageStabilityMarginPercent))
	}
	return contentStyle.Render(header + "\n\n" + m.outageTable.View())
}

func main() {
	inputPath := flag.String("input", "", "Load-flow study file (YAML)")
	configPath := flag.String("config", "", "Engine configuration file (YAML, optional)")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: powerflow-tui -input study.yaml")
		os.Exit(2)
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("reading %s: %v", *inputPath, err)
	}
	var in analysis.LoadFlowInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		log.Fatalf("parsing %s: %v", *inputPath, err)
	}

	opts := []analysis.Option{}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading configuration: %v", err)
		}
		opts = append(opts, analysis.WithConfig(cfg))
	}

	res, err := analysis.New(opts...).AnalyzeLoadFlow(in)
	if err != nil {
		log.Fatalf("load-flow analysis: %v", err)
	}

	p := tea.NewProgram(initialModel(res), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("running browser: %v", err)
	}
}
