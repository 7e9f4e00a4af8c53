package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show comprehensive help for pilotlog",
	Long:  `Display detailed help for all pilotlog commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if sub, _, err := rootCmd.Find(args); err == nil && sub != rootCmd {
				_ = sub.Help()
				return
			}
		}
		showCustomHelp(cmd.OutOrStdout())
	},
}

func showCustomHelp(w io.Writer) {
	fmt.Fprint(w, `
pilotlog - Pilot Logbook + Flight Time Tracker

COMMANDS:

  import <file.csv>...    Import logbook CSV exports
    -s, --source          swa|civilian|manual (default from config)
    --backup-before-import  Back up the database first (default true)
    --json                JSON report

    Example:
      pilotlog import --source swa trips-2025.csv

  flights                 List flights, newest first
    --from, --to          Date range (YYYY-MM-DD, inclusive)
    --origin, --destination, --airport
    --crew, --tail, --type
    --limit, --offset     Paging (limit 1-1000)
    --json                JSON output

  stats                   Totals by aircraft type and year
  routes                  Most flown routes and airports
    --top                 How many to show (-1 for all)

  rolling                 Rolling block time (7, 28, 60, 90, 365 days)
    --as-of               today|yesterday|7d|YYYY-MM-DD
    --windows             Comma separated window lengths
    --limit-hours         Project when a limit is reached
    --window              Window for --limit-hours (default 28)

  airports load <file>    Load OurAirports airports.csv
    --all                 Keep airports not in the logbook
  airports list           List loaded airports

  batches                 List imports
  batches show <id>       Show an import and its row errors
  batches delete <id>     Delete an import and its flights

  export                  Write flights and totals to .xlsx
    -o, --out             Output file (default pilotlog.xlsx)

  dashboard               Interactive rolling totals
  browse                  Interactive flights browser
  serve                   Local HTTP API on /api
    --host, --port        Listen address (default 127.0.0.1:8090)

  version                 Print version
  help                    Show this help

GLOBAL FLAGS:
  --config                Config file (./pilotlog.yaml or ~/.pilotlog/config.yaml)
  --db                    Database path (default ~/.pilotlog/logbook.db)
  --log-level             debug|info|warn|error

Settings can also be given as PILOTLOG_* environment variables or in a .env file.

`)
}
