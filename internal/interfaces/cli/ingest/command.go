// Package ingest implements the "ingest" command: a single checkpointed
// ingestion pass from the source system into the queue.
package ingest

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"skillscope/internal/application/ingestion"
	"skillscope/internal/interfaces/cli/app"
)

var (
	env        string
	configPath string
	since      string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ticket ingestion pass",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "production", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&since, "since", "", "Backfill tickets closed on or after this date (YYYY-MM-DD) instead of a checkpointed pass")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(env, configPath, app.Options{SourceDB: true})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := ingestion.NewController(
		a.TicketSource, a.QueueRepo, a.TechnicianRepo, a.CheckpointRepo,
		a.Config.Ingestion, a.Logger)

	var result *ingestion.Result
	if since != "" {
		ts, parseErr := time.Parse("2006-01-02", since)
		if parseErr != nil {
			return fmt.Errorf("invalid --since date %q: %w", since, parseErr)
		}
		result, err = controller.Backfill(ctx, ts)
	} else {
		result, err = controller.Run(ctx)
	}
	if err != nil {
		return err
	}

	a.Logger.Infow("ingestion complete",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"duplicates", result.Duplicates,
		"checkpoint", result.NewCheckpoint)
	return nil
}
