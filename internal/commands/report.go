package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/pilotlog/internal/logbook"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show logbook totals",
	Long:  "Show total flights and block time, broken down by aircraft type and year.",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		result, err := a.svc.Stats(cmd.Context(), queryFromFlags(cmd))
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return renderJSON(cmd.OutOrStdout(), result)
		}
		renderStats(cmd.OutOrStdout(), result)
		return nil
	}),
}

var rollingCmd = &cobra.Command{
	Use:   "rolling",
	Short: "Show rolling flight time",
	Long: `Show block time flown over rolling windows ending on a date.

A window of N days ending on D covers the N calendar days up to and including D.
Deadhead legs count toward the totals.

With --limit-hours, also project when the limit will be reached in --window
days at the current pace.

Examples:
  pilotlog rolling
  pilotlog rolling --as-of yesterday --windows 7,28
  pilotlog rolling --limit-hours 100 --window 28`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		asOf, _ := cmd.Flags().GetString("as-of")
		windows, _ := cmd.Flags().GetIntSlice("windows")
		limitHours, _ := cmd.Flags().GetFloat64("limit-hours")
		window, _ := cmd.Flags().GetInt("window")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		result, err := a.svc.Rolling(cmd.Context(), asOf, windows)
		if err != nil {
			return err
		}

		var burn *logbook.BurnRateResult
		if limitHours > 0 {
			burn, err = a.svc.BurnRate(cmd.Context(), asOf, window, int(limitHours*60))
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return renderJSON(out, struct {
				Rolling  *logbook.RollingResult  `json:"rolling"`
				BurnRate *logbook.BurnRateResult `json:"burn_rate,omitempty"`
			}{result, burn})
		}
		renderRolling(out, result)
		if burn != nil {
			fmt.Fprintln(out)
			renderWarnings(out, burn.Warnings)
			if burn.BurnRate != nil {
				renderBurnRate(out, burn.BurnRate)
			}
		}
		return nil
	}),
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Show most flown routes and airports",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		result, err := a.svc.Routes(cmd.Context(), queryFromFlags(cmd))
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return renderJSON(cmd.OutOrStdout(), result)
		}
		top, _ := cmd.Flags().GetInt("top")
		renderRoutes(cmd.OutOrStdout(), result, top)
		return nil
	}),
}

func init() {
	addQueryFlags(statsCmd, false)
	statsCmd.Flags().Bool("json", false, "JSON output")

	rollingCmd.Flags().String("as-of", "", "End date: today, yesterday, 7d or YYYY-MM-DD (default today)")
	rollingCmd.Flags().IntSlice("windows", nil, "Window lengths in days (default from config)")
	rollingCmd.Flags().Float64("limit-hours", 0, "Flight time limit in hours to project against")
	rollingCmd.Flags().Int("window", 28, "Window in days for --limit-hours")
	rollingCmd.Flags().Bool("json", false, "JSON output")

	addQueryFlags(routesCmd, false)
	routesCmd.Flags().Int("top", 10, "Routes and airports to show, -1 for all")
	routesCmd.Flags().Bool("json", false, "JSON output")
}
