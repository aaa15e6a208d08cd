package main

import (
	"os"

	"github.com/spf13/cobra"

	"skillscope/internal/interfaces/cli/consolidate"
	"skillscope/internal/interfaces/cli/controller"
	"skillscope/internal/interfaces/cli/ingest"
	"skillscope/internal/interfaces/cli/migrate"
	"skillscope/internal/interfaces/cli/server"
	"skillscope/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "skillscope",
		Short: "SkillScope - service ticket skill analytics",
		Long: `SkillScope ingests closed service tickets, extracts technician skills
with a local LLM, consolidates them into a curated taxonomy, and serves
the results over an HTTP API.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		controller.NewCommand(),
		worker.NewCommand(),
		ingest.NewCommand(),
		consolidate.NewCommand(),
		consolidate.NewDistillCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
