package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/pilotlog/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export flights and totals to an Excel workbook",
	Long: `Write the flights matching the filters, their totals by aircraft type and
year, and the rolling totals to an .xlsx workbook.

Example:
  pilotlog export --from 2024-01-01 --out 2024.xlsx`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		path, _ := cmd.Flags().GetString("out")
		asOf, _ := cmd.Flags().GetString("as-of")

		wb, warnings, err := a.svc.Workbook(cmd.Context(), queryFromFlags(cmd), asOf)
		if err != nil {
			return err
		}
		renderWarnings(cmd.ErrOrStderr(), warnings)

		if err := export.WriteFile(path, *wb); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d flights to %s\n", len(wb.Flights), path)
		return nil
	}),
}

func init() {
	addQueryFlags(exportCmd, false)
	exportCmd.Flags().StringP("out", "o", "pilotlog.xlsx", "Output file")
	exportCmd.Flags().String("as-of", "", "End date for the rolling totals (default today)")
}
