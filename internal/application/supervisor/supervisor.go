// Package supervisor drives the end-to-end pipeline: it recovers stuck work,
// ingests new tickets, and fans out extraction workers until the queue
// drains, then idles until the next cycle.
package supervisor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"skillscope/internal/application/extraction"
	"skillscope/internal/application/ingestion"
	"skillscope/internal/domain/queue"
	"skillscope/internal/shared/config"
	"skillscope/internal/shared/logger"
)

// WorkerFactory builds a fresh worker for each cycle so every worker gets its
// own identity and run audit record.
type WorkerFactory func() (*extraction.Worker, error)

type Supervisor struct {
	queueRepo   queue.Repository
	ingest      *ingestion.Controller
	newWorker   WorkerFactory
	workerCount int
	idleSleep   time.Duration
	logger      logger.Interface
}

func New(
	queueRepo queue.Repository,
	ingest *ingestion.Controller,
	newWorker WorkerFactory,
	extractionCfg config.ExtractionConfig,
	controllerCfg config.ControllerConfig,
	log logger.Interface,
) *Supervisor {
	idle := time.Duration(controllerCfg.IdleSleepMinutes) * time.Minute
	if idle <= 0 {
		idle = time.Hour
	}
	workers := extractionCfg.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	return &Supervisor{
		queueRepo:   queueRepo,
		ingest:      ingest,
		newWorker:   newWorker,
		workerCount: workers,
		idleSleep:   idle,
		logger:      log.With("component", "supervisor"),
	}
}

// Run loops cycles until ctx is canceled. On the way out it resets any
// tickets the canceled workers left claimed.
func (s *Supervisor) Run(ctx context.Context) error {
	s.logger.Infow("supervisor started", "worker_count", s.workerCount)

	if err := s.resetStuck(ctx); err != nil {
		return err
	}

	for {
		if err := s.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				s.shutdownCleanup()
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			s.shutdownCleanup()
			return nil
		default:
		}
	}
}

func (s *Supervisor) runCycle(ctx context.Context) error {
	s.logger.Infow("starting cycle")

	if _, err := s.ingest.Run(ctx); err != nil {
		// Ingestion failure should not stall extraction of already-queued
		// work; log and continue the cycle.
		s.logger.Errorw("ingestion failed", "error", err)
	}

	pending, err := s.queueRepo.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending tickets: %w", err)
	}

	if pending == 0 {
		s.logger.Infow("no pending tickets, idling", "sleep", s.idleSleep)
		select {
		case <-time.After(s.idleSleep):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.logger.Infow("spawning workers", "pending", pending, "workers", s.workerCount)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workerCount; i++ {
		w, err := s.newWorker()
		if err != nil {
			return fmt.Errorf("failed to build worker: %w", err)
		}
		g.Go(func() error {
			if err := w.Run(gctx); err != nil && gctx.Err() == nil {
				// Let the other workers keep draining; the failed worker's
				// claims are recovered by the next stuck reset.
				s.logger.Errorw("worker exited with error", "worker_id", w.ID(), "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Infow("cycle complete")
	return ctx.Err()
}

func (s *Supervisor) resetStuck(ctx context.Context) error {
	reset, err := s.queueRepo.ResetStuck(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset stuck tickets: %w", err)
	}
	if reset > 0 {
		s.logger.Infow("reset stuck tickets", "count", reset)
	}
	return nil
}

// shutdownCleanup runs with a fresh context because the supervisor's own
// context is already canceled by the time we get here.
func (s *Supervisor) shutdownCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.resetStuck(ctx); err != nil {
		s.logger.Errorw("shutdown cleanup failed", "error", err)
		return
	}
	s.logger.Infow("shutdown complete")
}
