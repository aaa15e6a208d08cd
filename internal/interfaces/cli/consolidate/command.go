// Package consolidate implements the "consolidate" and "distill" commands
// running the two taxonomy consolidation passes.
package consolidate

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"skillscope/internal/application/consolidation"
	"skillscope/internal/interfaces/cli/app"
	"skillscope/internal/shared/config"
	"skillscope/internal/shared/logger"
)

// NewCommand builds the meta-analysis command grouping discovered skills
// under managed skills.
func NewCommand() *cobra.Command {
	return newPassCommand(
		"consolidate",
		"Group unassociated discovered skills into managed skills",
		func(a *app.App) (consolidation.Pass, config.ConsolidationConfig) {
			return consolidation.MetaAnalysisPass(a.TaxonomyRepo), a.Config.MetaAnalysis
		},
	)
}

// NewDistillCommand builds the distillation command grouping managed skills
// under distilled skills.
func NewDistillCommand() *cobra.Command {
	return newPassCommand(
		"distill",
		"Group unassociated managed skills into distilled skills",
		func(a *app.App) (consolidation.Pass, config.ConsolidationConfig) {
			return consolidation.DistillationPass(a.TaxonomyRepo), a.Config.Distillation
		},
	)
}

func newPassCommand(use, short string, build func(*app.App) (consolidation.Pass, config.ConsolidationConfig)) *cobra.Command {
	var (
		env        string
		configPath string
		batches    int
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Bootstrap(env, configPath, app.Options{LLM: true})
			if err != nil {
				return err
			}
			defer a.Close()

			pass, cfg := build(a)
			c, err := consolidation.NewConsolidator(pass, a.LLMClient, cfg, a.Logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var summary *consolidation.RunSummary
			if batches > 0 {
				summary, err = c.RunBatches(ctx, batches)
			} else {
				summary, err = c.RunContinuous(ctx)
			}
			if err != nil {
				return err
			}

			reportSummary(a.Logger, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&env, "env", "e", "production", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().IntVarP(&batches, "batches", "b", 0, "Fixed number of batches to run (0 = run until the backlog is empty)")

	return cmd
}

func reportSummary(log logger.Interface, summary *consolidation.RunSummary) {
	fields := []any{
		"batches", summary.BatchesRun,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	}
	if summary.LogPath != "" {
		fields = append(fields, "failure_log", summary.LogPath)
	}
	log.Infow("consolidation finished", fields...)
}
