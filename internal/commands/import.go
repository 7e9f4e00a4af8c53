package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/pilotlog/internal/importer"
	"github.com/balkashynov/pilotlog/internal/models"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>...",
	Short: "Import logbook CSV files",
	Long: `Import one or more CSV exports. Each file is imported in its own
transaction and recorded as a batch that can later be deleted.

Rows that cannot be parsed are skipped and reported; flights already in the
logbook (same date, flight number, route and tail) are counted as
duplicates.

Examples:
  pilotlog import trips-2024.csv
  pilotlog import --source civilian logbook.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		sourceFlag, _ := cmd.Flags().GetString("source")
		if sourceFlag == "" {
			sourceFlag = a.cfg.DefaultSource
		}
		source, err := models.ParseSource(sourceFlag)
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")

		out := cmd.OutOrStdout()
		var reports []*importer.Report
		var failed int
		for _, path := range args {
			report, err := a.svc.ImportPath(cmd.Context(), path, source)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "Error importing %s: %v\n", path, err)
				continue
			}
			reports = append(reports, report)
			if !jsonOutput {
				renderImportReport(out, report, a.cfg.MaxDisplayedErrors)
			}
		}

		if jsonOutput {
			if err := renderJSON(out, reports); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to import", failed, len(args))
		}
		return nil
	}),
}

func init() {
	importCmd.Flags().StringP("source", "s", "", "Source format: swa, civilian or manual (default from config)")
	importCmd.Flags().Bool("backup-before-import", true, "Back up the database before importing")
	importCmd.Flags().Bool("json", false, "Print import reports as JSON")
}
