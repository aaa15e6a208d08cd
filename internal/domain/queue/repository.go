package queue

import "context"

// WorkerStatus is one in-flight claim as seen by the live status view.
type WorkerStatus struct {
	WorkerID           string
	SourceTicketNumber string
	LastUpdated        string
}

// Repository is the transactional work-queue contract. ClaimBatch is the only
// cross-worker synchronization point and must be atomic: two concurrent
// callers never receive overlapping tickets.
type Repository interface {
	// Enqueue inserts a Pending ticket. A duplicate source ticket number is
	// tolerated and reported via the boolean, not an error.
	Enqueue(ctx context.Context, t *Ticket) (bool, error)

	// ClaimBatch atomically claims up to batchSize Pending tickets for
	// workerID, oldest-enqueued first. An empty result means the queue is
	// drained.
	ClaimBatch(ctx context.Context, workerID string, batchSize int) ([]*Ticket, error)

	// UpdateStatus sets a terminal status. Idempotent.
	UpdateStatus(ctx context.Context, ticketID uint, status Status) error

	// SaveSkills gets-or-creates each discovered skill and links it to the
	// ticket; duplicate (ticket, skill) pairs are silently ignored.
	SaveSkills(ctx context.Context, ticketID uint, skillNames []string) error

	// CompleteWithSkills persists skills and the Completed status in one
	// transaction so that a failure leaves no partial skill rows behind.
	CompleteWithSkills(ctx context.Context, ticketID uint, skillNames []string) error

	// ResetStuck moves every Claimed ticket back to Pending, clearing its
	// worker binding. Returns the number of tickets recovered.
	ResetStuck(ctx context.Context) (int64, error)

	// RequeueErrors is the operator action that moves Error tickets back to
	// Pending for another pass.
	RequeueErrors(ctx context.Context) (int64, error)

	PendingCount(ctx context.Context) (int64, error)
	StatusCounts(ctx context.Context) (map[Status]int64, error)
	ActiveClaims(ctx context.Context) ([]WorkerStatus, error)
}
