package analysis

import (
	"context"
	"time"
)

type RunRepository interface {
	Start(ctx context.Context, startTime time.Time) (uint, error)
	Finish(ctx context.Context, runID uint, status string, ticketsProcessed int, errorMessage string, lastTicketDate *time.Time) error
}

// CheckpointRepository manages the single-row ingestion high-water mark. The
// checkpoint only ever moves forward, and only past source IDs that were
// inserted or deliberately skipped.
type CheckpointRepository interface {
	LastProcessedID(ctx context.Context) (int64, error)
	Advance(ctx context.Context, newID int64) error
}
