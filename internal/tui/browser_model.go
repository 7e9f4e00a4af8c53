package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/pilotlog/internal/filter"
	"github.com/balkashynov/pilotlog/internal/logbook"
	"github.com/balkashynov/pilotlog/internal/metrics"
	"github.com/balkashynov/pilotlog/internal/models"
	"github.com/balkashynov/pilotlog/internal/parser"
)

const defaultPageSize = 20

// BrowserModel pages through flights with a details panel and crew search
type BrowserModel struct {
	ctx   context.Context
	lb    Logbook
	state *filter.State

	width  int
	height int

	table    table.Model
	search   textinput.Model
	flights  []models.Flight
	total    int64
	page     int
	pageSize int
	warnings []string
	err      error
}

type flightsPageMsg struct {
	result *logbook.FlightsResult
	page   int
	err    error
}

var browserColumns = []table.Column{
	{Title: "DATE", Width: 10},
	{Title: "FLT", Width: 6},
	{Title: "FROM", Width: 5},
	{Title: "TO", Width: 5},
	{Title: "BLOCK", Width: 6},
	{Title: "TAIL", Width: 7},
	{Title: "TYPE", Width: 10},
}

// NewBrowserModel creates a flights browser bound to state
func NewBrowserModel(ctx context.Context, lb Logbook, state *filter.State) BrowserModel {
	t := table.New(
		table.WithColumns(browserColumns),
		table.WithFocused(true),
		table.WithHeight(defaultPageSize),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright))
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorAccentMain)).
		Bold(true)
	t.SetStyles(styles)

	ti := textinput.New()
	ti.Prompt = "Crew: "
	ti.Placeholder = "name or part of it"
	ti.CharLimit = 50
	ti.SetValue(state.Get().Crew)

	return BrowserModel{
		ctx:      ctx,
		lb:       lb,
		state:    state,
		table:    t,
		search:   ti,
		pageSize: defaultPageSize,
	}
}

// Init loads the first page
func (m BrowserModel) Init() tea.Cmd {
	return m.load(m.state.Get(), 0)
}

func (m BrowserModel) load(f filter.Filter, page int) tea.Cmd {
	pageSize := m.pageSize
	return func() tea.Msg {
		q := f.Query()
		q.Limit = pageSize
		q.Offset = page * pageSize
		result, err := m.lb.Flights(m.ctx, q, true)
		return flightsPageMsg{result: result, page: page, err: err}
	}
}

func (m BrowserModel) totalPages() int {
	if m.total == 0 {
		return 1
	}
	return int((m.total + int64(m.pageSize) - 1) / int64(m.pageSize))
}

// Update handles messages
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(m.width*60/100 - 4)

		// Height - header(2) - pagination(1) - help(1) - borders(4) - margins(4)
		available := m.height - 12
		if available < 3 {
			available = 3
		}
		if available != m.pageSize {
			m.pageSize = available
			m.table.SetHeight(available)
			return m, m.load(m.state.Get(), 0)
		}
		return m, nil

	case flightsPageMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.page = msg.page
		m.flights = msg.result.Flights
		m.total = msg.result.Total
		m.warnings = msg.result.Warnings
		m.table.SetRows(flightRows(m.flights))
		m.table.SetCursor(0)
		return m, nil

	case filterChangedMsg:
		if !m.search.Focused() {
			m.search.SetValue(msg.Crew)
		}
		return m, m.load(filter.Filter(msg), 0)

	case tea.KeyMsg:
		if m.search.Focused() {
			return m.handleSearchKeys(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.page > 0 {
				return m, m.load(m.state.Get(), m.page-1)
			}
			return m, nil
		case "right", "l":
			if m.page < m.totalPages()-1 {
				return m, m.load(m.state.Get(), m.page+1)
			}
			return m, nil
		case "/":
			m.table.Blur()
			return m, m.search.Focus()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleSearchKeys handles key input while the crew search is focused
func (m BrowserModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.search.SetValue(m.state.Get().Crew)
		m.search.Blur()
		m.table.Focus()
		return m, nil
	case "enter":
		crew := strings.TrimSpace(m.search.Value())
		m.search.Blur()
		m.table.Focus()
		m.state.Update(func(f filter.Filter) filter.Filter {
			f.Crew = crew
			return f
		})
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func flightRows(flights []models.Flight) []table.Row {
	rows := make([]table.Row, 0, len(flights))
	for _, f := range flights {
		typ := models.Str(f.AircraftType)
		if typ == "" {
			typ = models.Str(f.AircraftTypeRaw)
		}
		rows = append(rows, table.Row{
			f.FlightDate,
			models.Str(f.FlightNumber),
			f.Origin,
			f.Destination,
			metrics.FormatMinutes(f.BlockMinutes),
			models.Str(f.TailNumber),
			typ,
		})
	}
	return rows
}

// selected returns the flight under the cursor
func (m BrowserModel) selected() *models.Flight {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.flights) {
		return nil
	}
	return &m.flights[i]
}

// View renders the browser
func (m BrowserModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// 60% for the table, the rest for details
	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 1

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTable(leftWidth),
		" ",
		m.renderDetails(rightWidth),
	)

	var bottom string
	if m.search.Focused() {
		bottom = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimaryText)).
			Background(lipgloss.Color(ColorBorder)).
			Padding(0, 1).
			Width(m.width - 2).
			Render(m.search.View())
	} else {
		bottom = helpStyle.Copy().Align(lipgloss.Center).Width(m.width).
			Render("↑/↓ nav · ←/→ page · / crew search · q/esc quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left, "", content, "", bottom)
}

func (m BrowserModel) renderTable(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Flights"))
	if crew := m.state.Get().Crew; crew != "" {
		b.WriteString(labelStyle.Render("  crew ~ " + crew))
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case len(m.flights) == 0:
		b.WriteString(mutedStyle.Render("No flights found"))
	default:
		b.WriteString(m.table.View())
	}
	for _, w := range m.warnings {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(w))
	}

	pageInfo := fmt.Sprintf("Page %d/%d (%d flights)", m.page+1, m.totalPages(), m.total)
	b.WriteString("\n")
	b.WriteString(helpStyle.Copy().Italic(false).Align(lipgloss.Center).Width(width - 2).MarginTop(1).Render(pageInfo))

	return cardStyle.Copy().Padding(0).Width(width).Render(b.String())
}

func (m BrowserModel) renderDetails(width int) string {
	var b strings.Builder

	f := m.selected()
	if f == nil {
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentMain)).
			Bold(true).
			Align(lipgloss.Center).
			Width(width).
			Render("pilotlog"))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Copy().Align(lipgloss.Center).Width(width).MarginTop(2).
			Render("Select a flight to view details"))
		return cardStyle.Copy().Padding(0).Width(width).Render(b.String())
	}

	title := fmt.Sprintf("%s → %s", f.Origin, f.Destination)
	if n := models.Str(f.FlightNumber); n != "" {
		title = n + "  " + title
	}
	b.WriteString(valueStyle.Render(title))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label + ": "))
		b.WriteString(value)
		b.WriteString("\n")
	}
	clock := func(v *int) string {
		if v == nil {
			return ""
		}
		return parser.FormatClock(*v)
	}

	field("Date", f.FlightDate)
	field("Out", clock(f.DepartureTime))
	field("In", clock(f.ArrivalTime))
	field("Block", metrics.FormatMinutes(f.BlockMinutes))
	field("Tail", models.Str(f.TailNumber))
	field("Type", models.Str(f.AircraftType))
	field("Type (raw)", models.Str(f.AircraftTypeRaw))
	if f.IsDeadhead {
		field("Deadhead", warningStyle.Render("yes"))
	}
	if f.PICTakeoff || f.PICLanding {
		field("PIC", picText(f))
	}
	crew := strings.TrimSpace(models.Str(f.CrewPosition) + " " + models.Str(f.CrewName))
	if id := models.Str(f.CrewID); id != "" {
		crew += " [" + id + "]"
	}
	field("Crew", crew)
	field("Source", string(f.Source))

	for _, a := range f.Attributes {
		value := a.Value
		if u := models.Str(a.Unit); u != "" {
			value += " " + u
		}
		field(a.Name, value)
	}

	if r := models.Str(f.Remarks); r != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Copy().Width(width - 2).Render(r))
	}

	return cardStyle.Copy().Padding(0).Width(width).Render(b.String())
}

func picText(f *models.Flight) string {
	var parts []string
	if f.PICTakeoff {
		parts = append(parts, "takeoff")
	}
	if f.PICLanding {
		parts = append(parts, "landing")
	}
	return strings.Join(parts, ", ")
}
