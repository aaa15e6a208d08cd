// Package server implements the "serve" command running the dashboard API.
package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"skillscope/internal/application/taxonomy"
	"skillscope/internal/infrastructure/migration"
	"skillscope/internal/interfaces/cli/app"
	httpRouter "skillscope/internal/interfaces/http"
	"skillscope/internal/interfaces/http/handlers"
	"skillscope/internal/shared/goroutine"
)

var (
	env         string
	configPath  string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  `Start the management and reporting HTTP API.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "production", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	a, err := app.Bootstrap(env, configPath, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	gin.DefaultWriter = io.Discard

	if autoMigrate {
		manager := migration.NewManager(env, a.Config.AnalyticsDB.Driver)
		if err := manager.Migrate(a.AnalyticsDB, migration.AutoMigrateModels()...); err != nil {
			return err
		}
	}

	taxonomyService := taxonomy.NewService(a.TaxonomyRepo, a.CountsCache, a.Logger)

	router := httpRouter.NewRouter(
		a.Config.Server,
		handlers.NewQueueHandler(a.QueueRepo, a.Logger),
		handlers.NewTaxonomyHandler(taxonomyService, a.Logger),
		handlers.NewReportingHandler(a.ReportingRepo, a.TechnicianRepo, a.Logger),
		a.Logger,
	)

	srv := &http.Server{
		Addr:         a.Config.Server.GetAddr(),
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	goroutine.SafeGo(a.Logger, "http-server", func() {
		a.Logger.Infow("server starting", "address", a.Config.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Errorw("server failed", "error", err)
			os.Exit(1)
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.Logger.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Errorw("server forced to shutdown", "error", err)
		return err
	}

	a.Logger.Infow("server exited gracefully")
	return nil
}
