// Package ingestion copies newly closed tickets from the source system into
// the work queue, tracked by a monotonic checkpoint.
package ingestion

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"skillscope/internal/domain/analysis"
	"skillscope/internal/domain/queue"
	"skillscope/internal/domain/skill"
	"skillscope/internal/domain/source"
	"skillscope/internal/shared/config"
	"skillscope/internal/shared/logger"
)

// Result summarises one ingestion pass.
type Result struct {
	Fetched       int
	Inserted      int
	Skipped       int
	Duplicates    int
	NewCheckpoint int64
}

// Controller pulls one batch of source tickets past the checkpoint and
// enqueues them for extraction. A blank technician is recorded under the
// unassigned sentinel; tickets the queue rejects are skipped, and the
// checkpoint still advances past them so they are never refetched.
type Controller struct {
	src            source.TicketSource
	queueRepo      queue.Repository
	technicianRepo skill.TechnicianRepository
	checkpoints    analysis.CheckpointRepository
	cfg            config.IngestionConfig
	logger         logger.Interface
}

func NewController(
	src source.TicketSource,
	queueRepo queue.Repository,
	technicianRepo skill.TechnicianRepository,
	checkpoints analysis.CheckpointRepository,
	cfg config.IngestionConfig,
	log logger.Interface,
) *Controller {
	return &Controller{
		src:            src,
		queueRepo:      queueRepo,
		technicianRepo: technicianRepo,
		checkpoints:    checkpoints,
		cfg:            cfg,
		logger:         log.With("component", "ingestion"),
	}
}

// Run performs a single ingestion pass. A per-ticket failure is logged and
// skipped; only infrastructure failures abort the pass.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	lastID, err := c.checkpoints.LastProcessedID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	c.logger.Infow("fetching new tickets", "after_id", lastID, "limit", c.cfg.FetchLimit)

	batch, err := c.src.FetchBatch(ctx, lastID, c.cfg.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source tickets: %w", err)
	}
	if len(batch) == 0 {
		c.logger.Infow("no new tickets found")
		return &Result{NewCheckpoint: lastID}, nil
	}

	result := &Result{Fetched: len(batch), NewCheckpoint: lastID}

	for _, st := range batch {
		if st.TicketNumber > result.NewCheckpoint {
			result.NewCheckpoint = st.TicketNumber
		}

		if err := c.enqueueOne(ctx, st, result); err != nil {
			c.logger.Warnw("skipping ticket",
				"ticket_number", st.TicketNumber,
				"error", err)
			result.Skipped++
		}
	}

	if result.NewCheckpoint > lastID {
		if err := c.checkpoints.Advance(ctx, result.NewCheckpoint); err != nil {
			return nil, fmt.Errorf("failed to advance checkpoint: %w", err)
		}
	}

	c.logger.Infow("ingestion pass complete",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"duplicates", result.Duplicates,
		"checkpoint", result.NewCheckpoint)

	return result, nil
}

// Backfill enqueues every ticket closed at or after since, regardless of the
// checkpoint. The checkpoint still only moves forward, so a backfill never
// rewinds normal ingestion.
func (c *Controller) Backfill(ctx context.Context, since time.Time) (*Result, error) {
	c.logger.Infow("backfilling tickets", "since", since, "limit", c.cfg.FetchLimit)

	batch, err := c.src.FetchClosedSince(ctx, since, c.cfg.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets closed since %s: %w", since.Format(time.RFC3339), err)
	}

	result := &Result{Fetched: len(batch)}
	for _, st := range batch {
		if st.TicketNumber > result.NewCheckpoint {
			result.NewCheckpoint = st.TicketNumber
		}
		if err := c.enqueueOne(ctx, st, result); err != nil {
			c.logger.Warnw("skipping ticket",
				"ticket_number", st.TicketNumber,
				"error", err)
			result.Skipped++
		}
	}

	if result.NewCheckpoint > 0 {
		if err := c.checkpoints.Advance(ctx, result.NewCheckpoint); err != nil {
			return nil, fmt.Errorf("failed to advance checkpoint: %w", err)
		}
	}

	c.logger.Infow("backfill complete",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"duplicates", result.Duplicates)
	return result, nil
}

func (c *Controller) enqueueOne(ctx context.Context, st source.Ticket, result *Result) error {
	name := skill.NormalizeTechnicianName(st.TechnicianName)

	technicianID, err := c.technicianRepo.GetOrCreate(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to resolve technician %q: %w", name, err)
	}

	t, err := queue.NewTicket(
		strconv.FormatInt(st.TicketNumber, 10),
		1,
		technicianID,
		st.DateClosed,
		queue.SourceMeta{
			ClientName:   st.ClientName,
			Summary:      st.Summary,
			SourceStatus: st.Status,
		},
	)
	if err != nil {
		return err
	}

	inserted, err := c.queueRepo.Enqueue(ctx, t)
	if err != nil {
		return fmt.Errorf("failed to enqueue: %w", err)
	}
	if inserted {
		result.Inserted++
	} else {
		result.Duplicates++
	}
	return nil
}
