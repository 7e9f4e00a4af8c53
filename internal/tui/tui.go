package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/pilotlog/internal/filter"
	"github.com/balkashynov/pilotlog/internal/logbook"
)

// Logbook is the data the terminal views read
type Logbook interface {
	Rolling(ctx context.Context, asOf string, windows []int) (*logbook.RollingResult, error)
	Stats(ctx context.Context, q logbook.Query) (*logbook.StatsResult, error)
	Flights(ctx context.Context, q logbook.Query, withAttributes bool) (*logbook.FlightsResult, error)
}

// filterChangedMsg carries a new filter into a running program
type filterChangedMsg filter.Filter

// run starts model full screen and forwards filter changes to it until it exits
func run(model tea.Model, state *filter.State) (tea.Model, error) {
	p := tea.NewProgram(model, tea.WithAltScreen())
	unsubscribe := state.Subscribe(func(f filter.Filter) {
		go p.Send(filterChangedMsg(f))
	})
	defer unsubscribe()
	return p.Run()
}

// RunDashboard starts the interactive rolling totals dashboard
func RunDashboard(ctx context.Context, lb Logbook, state *filter.State, windows []int) error {
	_, err := run(NewDashboardModel(ctx, lb, state, windows), state)
	return err
}

// RunBrowser starts the interactive flights browser
func RunBrowser(ctx context.Context, lb Logbook, state *filter.State) error {
	_, err := run(NewBrowserModel(ctx, lb, state), state)
	return err
}
