package commands

import (
	"github.com/spf13/cobra"

	"github.com/balkashynov/pilotlog/internal/filter"
	"github.com/balkashynov/pilotlog/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Interactive rolling totals dashboard",
	Long: `Show rolling totals, logbook totals and time by aircraft type.

Keys:
  a or /   change the as-of date
  r        reload
  q/esc    quit`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		state := filter.NewState(filterFromFlags(cmd))
		return tui.RunDashboard(contextOf(cmd), a.svc, state, a.cfg.RollingWindows)
	}),
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive flights browser",
	Long: `Page through flights with a details panel.

Keys:
  ↑/↓      select a flight
  ←/→      previous and next page
  /        search by crew name
  q/esc    quit`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		state := filter.NewState(filterFromFlags(cmd))
		return tui.RunBrowser(contextOf(cmd), a.svc, state)
	}),
}

// filterFromFlags builds the initial terminal view filter
func filterFromFlags(cmd *cobra.Command) filter.Filter {
	q := queryFromFlags(cmd)
	f := filter.Filter{
		DateFrom:     q.DateFrom,
		DateTo:       q.DateTo,
		Crew:         q.Crew,
		Tail:         q.Tail,
		Airport:      q.Airport,
		AircraftType: q.AircraftType,
	}
	if cmd.Flags().Lookup("as-of") != nil {
		f.AsOf, _ = cmd.Flags().GetString("as-of")
	}
	return f
}

func init() {
	addQueryFlags(dashboardCmd, false)
	dashboardCmd.Flags().String("as-of", "", "End date for rolling totals (default today)")
	addQueryFlags(browseCmd, false)
}
