// Package extraction runs the skill-extraction workers that drain the ticket
// queue through the LLM.
package extraction

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"skillscope/internal/domain/analysis"
	"skillscope/internal/domain/queue"
	"skillscope/internal/domain/source"
	"skillscope/internal/infrastructure/llm"
	"skillscope/internal/shared/config"
	"skillscope/internal/shared/llmjson"
	"skillscope/internal/shared/logger"
	"skillscope/internal/shared/prompt"
	"skillscope/internal/shared/sanitize"
)

//go:embed default_prompt.txt
var defaultPromptText string

// Worker claims batches of pending tickets, extracts skills from their source
// text, and commits per-ticket results. A failed ticket is marked Error and
// never blocks the rest of its batch. The worker exits once the queue drains.
type Worker struct {
	id         string
	queueRepo  queue.Repository
	src        source.TicketSource
	llmClient  llm.Client
	runRepo    analysis.RunRepository
	sanitizer  *sanitize.TextSanitizer
	promptTmpl prompt.Template
	cfg        config.ExtractionConfig
	logger     logger.Interface
}

func NewWorker(
	queueRepo queue.Repository,
	src source.TicketSource,
	llmClient llm.Client,
	runRepo analysis.RunRepository,
	cfg config.ExtractionConfig,
	log logger.Interface,
) (*Worker, error) {
	tmpl, fromFile, err := prompt.Load(cfg.PromptPath, defaultPromptText)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()[:8]
	w := &Worker{
		id:         id,
		queueRepo:  queueRepo,
		src:        src,
		llmClient:  llmClient,
		runRepo:    runRepo,
		sanitizer:  sanitize.NewTextSanitizer(),
		promptTmpl: tmpl,
		cfg:        cfg,
		logger:     log.With("worker_id", id),
	}
	if !fromFile && cfg.PromptPath != "" {
		w.logger.Warnw("prompt template not found, using built-in default", "path", cfg.PromptPath)
	}
	return w, nil
}

func (w *Worker) ID() string { return w.id }

// Run processes batches until the queue is drained or ctx is canceled. Each
// run is recorded in the analysis run audit table.
func (w *Worker) Run(ctx context.Context) error {
	// Stagger startup so a fleet of workers does not hit the claim query at
	// the same instant.
	if w.cfg.StartJitterSecs > 0 {
		jitter := time.Duration(rand.Intn(w.cfg.StartJitterSecs*1000)) * time.Millisecond
		w.logger.Debugw("delaying start", "jitter", jitter)
		select {
		case <-time.After(jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	runID, err := w.runRepo.Start(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}

	processed := 0
	var lastDate *time.Time

	finish := func(status, errMsg string) {
		if err := w.runRepo.Finish(context.WithoutCancel(ctx), runID, status, processed, errMsg, lastDate); err != nil {
			w.logger.Errorw("failed to record run completion", "error", err)
		}
	}

	for {
		if ctx.Err() != nil {
			w.logger.Infow("shutdown requested, stopping", "processed", processed)
			finish(analysis.RunStatusStopped, "")
			return ctx.Err()
		}

		batch, err := w.queueRepo.ClaimBatch(ctx, w.id, w.cfg.BatchSize)
		if err != nil {
			w.logger.Errorw("failed to claim batch", "error", err)
			finish(analysis.RunStatusFailed, err.Error())
			return fmt.Errorf("failed to claim batch: %w", err)
		}
		if len(batch) == 0 {
			w.logger.Infow("queue drained, exiting", "processed", processed)
			finish(analysis.RunStatusCompleted, "")
			return nil
		}

		w.logger.Infow("claimed batch", "size", len(batch))

		for _, t := range batch {
			if err := w.processTicket(ctx, t); err != nil {
				w.logger.Warnw("ticket failed",
					"ticket_id", t.ID(),
					"source_ticket_number", t.SourceTicketNumber(),
					"error", err)
				if updErr := w.queueRepo.UpdateStatus(ctx, t.ID(), queue.StatusError); updErr != nil {
					w.logger.Errorw("failed to mark ticket as errored", "ticket_id", t.ID(), "error", updErr)
				}
				continue
			}
			processed++
			closed := t.DateClosed()
			lastDate = &closed
		}

		if w.cfg.BatchDelaySecs > 0 {
			select {
			case <-time.After(time.Duration(w.cfg.BatchDelaySecs) * time.Second):
			case <-ctx.Done():
			}
		}
	}
}

// processTicket handles a single claimed ticket end to end. A panic in any
// step is converted into an error so one malformed ticket cannot take the
// worker down.
func (w *Worker) processTicket(ctx context.Context, t *queue.Ticket) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing ticket: %v", r)
		}
	}()

	src, err := w.src.FetchByNumber(ctx, t.SourceTicketNumber())
	if err != nil {
		return fmt.Errorf("failed to fetch source ticket: %w", err)
	}
	if src == nil {
		return fmt.Errorf("source ticket %s not found", t.SourceTicketNumber())
	}

	text := w.sanitizer.Clean(src.FullText())
	if text == "" {
		return fmt.Errorf("source ticket %s has no content", t.SourceTicketNumber())
	}
	rendered := w.promptTmpl.Render(map[string]string{"ticket_text": text})

	raw, err := w.llmClient.Generate(ctx, w.cfg.Model, rendered)
	if err != nil {
		return fmt.Errorf("llm generation failed: %w", err)
	}

	skills := llmjson.ParseSkills(raw)

	if err := w.queueRepo.CompleteWithSkills(ctx, t.ID(), skills); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}

	w.logger.Debugw("ticket completed",
		"ticket_id", t.ID(),
		"source_ticket_number", t.SourceTicketNumber(),
		"skills", len(skills))
	return nil
}
