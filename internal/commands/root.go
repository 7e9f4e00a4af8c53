package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/balkashynov/pilotlog/internal/aircraft"
	"github.com/balkashynov/pilotlog/internal/config"
	"github.com/balkashynov/pilotlog/internal/db"
	"github.com/balkashynov/pilotlog/internal/events"
	"github.com/balkashynov/pilotlog/internal/importer"
	"github.com/balkashynov/pilotlog/internal/logbook"
	"github.com/balkashynov/pilotlog/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pilotlog",
	Short: "A pilot logbook and flight time tracker",
	Long: `pilotlog imports airline and personal logbook CSV exports into a local
database and reports rolling flight time, totals, routes and burn rate from
the terminal, an interactive dashboard or a local HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pilotlog %s (commit %s, built %s)\n", version, commit, date)
	},
}

// app is everything a command needs once configuration is loaded
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *db.Store
	hub    *events.Hub
	svc    *logbook.Service

	closeLog func() error
}

// openApp loads configuration from the command's flags and opens the logbook
func openApp(cmd *cobra.Command) (*app, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{ConfigFile: configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Dir:     cfg.LogPath,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	if cfg.FileUsed != "" {
		logger.Debug("loaded config", "file", cfg.FileUsed)
	}

	normalizer := aircraft.Default()
	if cfg.AircraftTypesFile != "" {
		if err := normalizer.LoadFile(cfg.AircraftTypesFile); err != nil {
			_ = closeLog()
			return nil, err
		}
	}

	store, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	hub := events.NewHub(16)
	svc := logbook.New(store, importer.New(normalizer, logger), logbook.Options{
		Windows:            cfg.RollingWindows,
		BackupBeforeImport: cfg.BackupBeforeImport,
		Publisher:          hub,
		Logger:             logger,
	})

	return &app{cfg: cfg, logger: logger, store: store, hub: hub, svc: svc, closeLog: closeLog}, nil
}

func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.closeLog())
}

// withApp wraps a command function to open the logbook first
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./pilotlog.yaml or ~/.pilotlog/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Logbook database path")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(flightsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(rollingCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(airportsCmd)
	rootCmd.AddCommand(batchesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.SetHelpCommand(helpCmd)
}
