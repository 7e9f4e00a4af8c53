package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/pilotlog/internal/filter"
	"github.com/balkashynov/pilotlog/internal/logbook"
)

const maxTypesShown = 6

// DashboardModel shows rolling totals, overall totals and time by type
type DashboardModel struct {
	ctx     context.Context
	lb      Logbook
	state   *filter.State
	windows []int

	width  int
	height int

	asOf    textinput.Model
	rolling *logbook.RollingResult
	stats   *logbook.StatsResult
	err     error
	loading bool
}

type dashboardDataMsg struct {
	rolling *logbook.RollingResult
	stats   *logbook.StatsResult
	err     error
}

// NewDashboardModel creates a dashboard bound to state
func NewDashboardModel(ctx context.Context, lb Logbook, state *filter.State, windows []int) DashboardModel {
	ti := textinput.New()
	ti.Placeholder = "today, yesterday, 7d or YYYY-MM-DD"
	ti.CharLimit = 20
	ti.Width = 24
	ti.Prompt = "As of: "
	ti.SetValue(state.Get().AsOf)

	return DashboardModel{
		ctx:     ctx,
		lb:      lb,
		state:   state,
		windows: windows,
		asOf:    ti,
		loading: true,
	}
}

// Init loads the first data set
func (m DashboardModel) Init() tea.Cmd {
	return m.load(m.state.Get())
}

func (m DashboardModel) load(f filter.Filter) tea.Cmd {
	return func() tea.Msg {
		rolling, err := m.lb.Rolling(m.ctx, f.AsOf, m.windows)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		stats, err := m.lb.Stats(m.ctx, f.Query())
		return dashboardDataMsg{rolling: rolling, stats: stats, err: err}
	}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.rolling = msg.rolling
			m.stats = msg.stats
		}
		return m, nil

	case filterChangedMsg:
		m.loading = true
		if !m.asOf.Focused() {
			m.asOf.SetValue(msg.AsOf)
		}
		return m, m.load(filter.Filter(msg))

	case tea.KeyMsg:
		if m.asOf.Focused() {
			return m.handleInputKeys(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "a", "/":
			return m, m.asOf.Focus()
		case "r":
			m.loading = true
			return m, m.load(m.state.Get())
		}
	}
	return m, nil
}

func (m DashboardModel) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.asOf.SetValue(m.state.Get().AsOf)
		m.asOf.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.asOf.Value())
		m.asOf.Blur()
		m.state.Update(func(f filter.Filter) filter.Filter {
			f.AsOf = value
			return f
		})
		return m, nil
	}

	var cmd tea.Cmd
	m.asOf, cmd = m.asOf.Update(msg)
	return m, cmd
}

// View renders the dashboard
func (m DashboardModel) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentMain)).Render("pilotlog"),
		"  ",
		m.asOf.View(),
	)

	var body string
	switch {
	case m.err != nil:
		body = errorStyle.Render("Error: " + m.err.Error())
	case m.rolling == nil || m.stats == nil:
		body = mutedStyle.Render("Loading...")
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderRolling(),
			" ",
			m.renderTotals(),
			" ",
			m.renderTypes(),
		)
	}

	help := "a as-of · r reload · q quit"
	if m.asOf.Focused() {
		help = "enter apply · esc cancel"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		header,
		"",
		body,
		"",
		helpStyle.Render(help),
	)
}

func (m DashboardModel) renderRolling() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Rolling to " + m.rolling.AsOf))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-6s %7s %9s", "DAYS", "FLIGHTS", "BLOCK")))
	for _, w := range m.rolling.Windows {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-6d %7d %9s", w.Days, w.Flights, valueStyle.Render(w.Formatted)))
	}
	for _, warn := range m.rolling.Warnings {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(warn))
	}
	return cardStyle.Render(b.String())
}

func (m DashboardModel) renderTotals() string {
	s := m.stats
	var b strings.Builder
	b.WriteString(titleStyle.Render("Totals"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("Flights", fmt.Sprintf("%d", s.TotalFlights))
	row("Block", s.TotalBlockFormatted)
	row("Airports", fmt.Sprintf("%d", s.UniqueAirports))
	row("Aircraft", fmt.Sprintf("%d", s.UniqueAircraft))
	row("Deadhead", fmt.Sprintf("%d", s.DeadheadFlights))
	if s.DateRange != nil {
		row("From", s.DateRange.FirstFlight)
		row("To", s.DateRange.LastFlight)
	}
	return cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m DashboardModel) renderTypes() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("By type"))
	b.WriteString("\n")

	if len(m.stats.ByAircraftType) == 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("No flights"))
	}
	for i, t := range m.stats.ByAircraftType {
		if i == maxTypesShown {
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render(fmt.Sprintf("+%d more", len(m.stats.ByAircraftType)-maxTypesShown)))
			break
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-12s %5d %9s", t.Type, t.Flights, valueStyle.Render(t.Formatted)))
	}
	return cardStyle.Render(b.String())
}
