package commands

import (
	"github.com/spf13/cobra"

	"github.com/balkashynov/pilotlog/internal/logbook"
)

var flightsCmd = &cobra.Command{
	Use:     "flights",
	Aliases: []string{"ls"},
	Short:   "List flights",
	Long: `List flights newest first with optional filters.

Examples:
  pilotlog flights --from 2025-01-01 --airport KDEN
  pilotlog flights --crew smith --limit 20 --offset 20
  pilotlog flights --tail N8701Q --json`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		result, err := a.svc.Flights(cmd.Context(), queryFromFlags(cmd), true)
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return renderJSON(cmd.OutOrStdout(), result)
		}
		renderFlights(cmd.OutOrStdout(), result)
		return nil
	}),
}

// addQueryFlags registers the flight filter flags
func addQueryFlags(cmd *cobra.Command, paged bool) {
	cmd.Flags().String("from", "", "First date, inclusive (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Last date, inclusive (YYYY-MM-DD)")
	cmd.Flags().String("origin", "", "Departure airport")
	cmd.Flags().String("destination", "", "Arrival airport")
	cmd.Flags().String("airport", "", "Departure or arrival airport")
	cmd.Flags().String("crew", "", "Crew name, partial match")
	cmd.Flags().String("tail", "", "Tail number, partial match")
	cmd.Flags().String("type", "", "Aircraft type")
	if paged {
		cmd.Flags().Int("limit", logbook.DefaultLimit, "Flights per page")
		cmd.Flags().Int("offset", 0, "Flights to skip")
	}
}

// queryFromFlags reads the flags registered by addQueryFlags
func queryFromFlags(cmd *cobra.Command) logbook.Query {
	flags := cmd.Flags()
	q := logbook.Query{}
	q.DateFrom, _ = flags.GetString("from")
	q.DateTo, _ = flags.GetString("to")
	q.Origin, _ = flags.GetString("origin")
	q.Destination, _ = flags.GetString("destination")
	q.Airport, _ = flags.GetString("airport")
	q.Crew, _ = flags.GetString("crew")
	q.Tail, _ = flags.GetString("tail")
	q.AircraftType, _ = flags.GetString("type")
	if flags.Lookup("limit") != nil {
		q.Limit, _ = flags.GetInt("limit")
		q.Offset, _ = flags.GetInt("offset")
	}
	return q
}

func init() {
	addQueryFlags(flightsCmd, true)
	flightsCmd.Flags().Bool("json", false, "JSON output")
}
