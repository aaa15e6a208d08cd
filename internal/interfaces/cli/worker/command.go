// Package worker implements the "worker" command: a one-shot pool of
// extraction workers that drains the queue and exits.
package worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"skillscope/internal/application/extraction"
	"skillscope/internal/interfaces/cli/app"
)

var (
	env        string
	configPath string
	count      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Drain the ticket queue once with extraction workers",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "production", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Worker count (defaults to extraction.worker_count)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(env, configPath, app.Options{SourceDB: true, LLM: true})
	if err != nil {
		return err
	}
	defer a.Close()

	workers := count
	if workers <= 0 {
		workers = a.Config.Extraction.WorkerCount
	}
	if workers <= 0 {
		workers = 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Logger.Infow("starting worker pool", "count", workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		w, err := extraction.NewWorker(
			a.QueueRepo, a.TicketSource, a.LLMClient, a.RunRepo,
			a.Config.Extraction, a.Logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			err := w.Run(gctx)
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	a.Logger.Infow("worker pool finished")
	return nil
}
