package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/pilotlog/internal/logbook"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List import batches",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		batches, err := a.svc.Batches(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return renderJSON(cmd.OutOrStdout(), batches)
		}
		renderBatches(cmd.OutOrStdout(), batches)
		return nil
	}),
}

var batchesShowCmd = &cobra.Command{
	Use:   "show <batch-id>",
	Short: "Show an import batch with its row errors",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		batch, err := a.svc.Batch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return renderJSON(cmd.OutOrStdout(), batch)
		}
		renderBatch(cmd.OutOrStdout(), batch, -1)
		return nil
	}),
}

var batchesDeleteCmd = &cobra.Command{
	Use:     "delete <batch-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an import batch and all of its flights",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		deleted, err := a.svc.DeleteBatch(cmd.Context(), args[0])
		if errors.Is(err, logbook.ErrBatchNotFound) {
			return fmt.Errorf("batch %s not found", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted batch %s and %d flights\n", args[0], deleted)
		return nil
	}),
}

func init() {
	batchesCmd.Flags().Bool("json", false, "JSON output")
	batchesShowCmd.Flags().Bool("json", false, "JSON output")

	batchesCmd.AddCommand(batchesShowCmd)
	batchesCmd.AddCommand(batchesDeleteCmd)
}
