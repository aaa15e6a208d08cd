// Package source models the external ticketing system the pipeline reads
// from. Tickets arrive read-only; the queue keeps its own copy.
package source

import (
	"context"
	"strings"
	"time"
)

// Ticket is the standardized view of a service ticket from the source
// system, independent of which system produced it.
type Ticket struct {
	TicketNumber    int64
	Summary         string
	Status          string
	ClientName      string
	TechnicianName  string
	Description     string
	ResolutionNotes string
	DateClosed      time.Time
}

// FullText joins the non-blank narrative fields into the block of text the
// skill extraction prompt operates on. A ticket with no narrative at all
// yields the empty string.
func (t Ticket) FullText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Summary, t.Description, t.ResolutionNotes} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n---\n")
}

// TicketSource fetches tickets from the external system in source-ID order.
type TicketSource interface {
	// FetchBatch returns up to limit tickets with a ticket number strictly
	// greater than afterID, ordered by ticket number ascending.
	FetchBatch(ctx context.Context, afterID int64, limit int) ([]Ticket, error)

	// FetchByNumber returns the ticket with the given source number, or nil
	// when the source has no such ticket.
	FetchByNumber(ctx context.Context, ticketNumber string) (*Ticket, error)

	// FetchClosedSince returns up to limit tickets closed at or after ts,
	// ordered by ticket number ascending. Used for date-based backfills.
	FetchClosedSince(ctx context.Context, ts time.Time, limit int) ([]Ticket, error)
}
