// Package controller implements the "controller" command: the long-running
// supervisor that ingests tickets and fans out extraction workers.
package controller

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"skillscope/internal/application/extraction"
	"skillscope/internal/application/ingestion"
	"skillscope/internal/application/supervisor"
	"skillscope/internal/interfaces/cli/app"
)

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "controller",
		Short: "Run the continuous ingest-and-extract pipeline",
		Long: `Run the supervisor loop: recover stuck tickets, ingest newly closed
tickets from the source system, and drain the queue with a pool of
extraction workers. Repeats until interrupted.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "production", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(env, configPath, app.Options{SourceDB: true, LLM: true})
	if err != nil {
		return err
	}
	defer a.Close()

	ingest := ingestion.NewController(
		a.TicketSource, a.QueueRepo, a.TechnicianRepo, a.CheckpointRepo,
		a.Config.Ingestion, a.Logger)

	newWorker := func() (*extraction.Worker, error) {
		return extraction.NewWorker(
			a.QueueRepo, a.TicketSource, a.LLMClient, a.RunRepo,
			a.Config.Extraction, a.Logger)
	}

	sup := supervisor.New(
		a.QueueRepo, ingest, newWorker,
		a.Config.Extraction, a.Config.Controller, a.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sup.Run(ctx)
}
