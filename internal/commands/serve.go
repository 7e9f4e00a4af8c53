package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/pilotlog/internal/models"
	"github.com/balkashynov/pilotlog/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the logbook over a local HTTP API",
	Long: `Serve the logbook as JSON under /api, accept CSV uploads on /api/import and
stream import events over a websocket on /api/events. Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		source, err := models.ParseSource(a.cfg.DefaultSource)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(server.Config{
			Service:       a.svc,
			Hub:           a.hub,
			Addr:          a.cfg.Addr(),
			DefaultSource: source,
			Logger:        a.logger,
		})
		return srv.Serve(ctx)
	}),
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	serveCmd.Flags().String("host", "", "Listen host (default from config)")
	serveCmd.Flags().Int("port", 0, "Listen port (default from config)")
}
