// Package app wires the shared dependency graph used by every CLI command:
// configuration, logging, database connections, cache, and repositories.
package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"skillscope/internal/domain/analysis"
	"skillscope/internal/domain/queue"
	"skillscope/internal/domain/reporting"
	"skillscope/internal/domain/skill"
	domainSource "skillscope/internal/domain/source"
	"skillscope/internal/infrastructure/cache"
	"skillscope/internal/infrastructure/config"
	"skillscope/internal/infrastructure/database"
	"skillscope/internal/infrastructure/llm"
	"skillscope/internal/infrastructure/repository"
	infraSource "skillscope/internal/infrastructure/source"
	"skillscope/internal/shared/logger"
)

// App is the assembled dependency container. Close releases every connection
// it opened.
type App struct {
	Config *config.Config
	Logger logger.Interface

	AnalyticsDB *gorm.DB
	SourceDB    *gorm.DB
	Redis       *redis.Client

	QueueRepo      queue.Repository
	TaxonomyRepo   skill.TaxonomyRepository
	TechnicianRepo skill.TechnicianRepository
	ReportingRepo  reporting.Repository
	RunRepo        analysis.RunRepository
	CheckpointRepo analysis.CheckpointRepository
	TicketSource   domainSource.TicketSource
	LLMClient      llm.Client
	CountsCache    cache.TaxonomyCountsCache
}

// Options controls which optional connections Bootstrap opens.
type Options struct {
	// SourceDB opens the upstream ticketing database. Only ingestion and
	// extraction need it.
	SourceDB bool
	// LLM builds the generation client. Only extraction and consolidation
	// need it.
	LLM bool
}

// Bootstrap loads configuration, initializes logging, and connects the
// requested backends.
func Bootstrap(env, configPath string, opts Options) (*App, error) {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.AnalyticsDB); err != nil {
		return nil, fmt.Errorf("failed to connect analytics database: %w", err)
	}
	analyticsDB := database.Get()

	a := &App{
		Config:      cfg,
		Logger:      log,
		AnalyticsDB: analyticsDB,
	}

	if opts.SourceDB {
		sourceDB, err := database.Open(&cfg.SourceDB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect source database: %w", err)
		}
		a.SourceDB = sourceDB
		a.TicketSource = infraSource.NewGormTicketSource(sourceDB)
	}

	if opts.LLM {
		client, err := llm.NewOllamaClient(cfg.LLM)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to build llm client: %w", err)
		}
		a.LLMClient = client
	}

	if cfg.Redis.Enabled {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.CountsCache = cache.NewRedisTaxonomyCountsCache(a.Redis, log)
	} else {
		a.CountsCache = cache.NoopTaxonomyCountsCache{}
	}

	a.QueueRepo = repository.NewQueueRepository(analyticsDB, log)
	a.TaxonomyRepo = repository.NewTaxonomyRepository(analyticsDB, log)
	a.TechnicianRepo = repository.NewTechnicianRepository(analyticsDB)
	a.ReportingRepo = repository.NewReportingRepository(analyticsDB)
	a.RunRepo = repository.NewRunRepository(analyticsDB)
	a.CheckpointRepo = repository.NewCheckpointRepository(analyticsDB)

	return a, nil
}

// Close releases every connection the container holds.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warnw("failed to close redis", "error", err)
		}
	}
	if a.SourceDB != nil {
		if sqlDB, err := a.SourceDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := database.Close(); err != nil && a.Logger != nil {
		a.Logger.Warnw("failed to close analytics database", "error", err)
	}
}
