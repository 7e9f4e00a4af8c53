package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/pilotlog/internal/airports"
)

var airportsCmd = &cobra.Command{
	Use:   "airports",
	Short: "Manage airport reference data",
	Long: `Airport coordinates are used to locate routes on the map. Load them from
an OurAirports airports.csv download.`,
}

var airportsLoadCmd = &cobra.Command{
	Use:   "load <airports.csv>",
	Short: "Load airports from an OurAirports CSV",
	Long: `Load airports from an OurAirports airports.csv file. Closed airports and
rows without a four letter ICAO code or coordinates are skipped.

By default only airports already present in the logbook are kept; use --all
to load every airport.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		var opts airports.Options
		if all, _ := cmd.Flags().GetBool("all"); !all {
			codes, err := a.svc.AirportCodesInUse(cmd.Context())
			if err != nil {
				return err
			}
			if len(codes) == 0 {
				return fmt.Errorf("no flights in the logbook yet, import flights first or use --all")
			}
			opts.Keep = airports.KeepCodes(codes)
		}

		list, stats, err := airports.ParseFile(args[0], opts)
		if err != nil {
			return err
		}
		loaded, err := a.svc.LoadAirports(cmd.Context(), list)
		if err != nil {
			return err
		}
		a.logger.Info("loaded airports", "file", args[0], "count", loaded)
		renderAirportLoad(cmd.OutOrStdout(), loaded, stats)
		return nil
	}),
}

var airportsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List loaded airports",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		list, err := a.svc.Airports(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return renderJSON(cmd.OutOrStdout(), list)
		}
		renderAirports(cmd.OutOrStdout(), list)
		return nil
	}),
}

func init() {
	airportsLoadCmd.Flags().Bool("all", false, "Load every airport, not only those in the logbook")
	airportsListCmd.Flags().Bool("json", false, "JSON output")

	airportsCmd.AddCommand(airportsLoadCmd)
	airportsCmd.AddCommand(airportsListCmd)
}
