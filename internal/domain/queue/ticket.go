package queue

import (
	"fmt"
	"strings"
	"time"
)

// SourceMeta is a snapshot of descriptive source fields captured at ingestion
// so the reporting side does not need a source-database round trip.
type SourceMeta struct {
	ClientName   string `json:"client_name,omitempty"`
	Summary      string `json:"summary,omitempty"`
	SourceStatus string `json:"source_status,omitempty"`
}

// Ticket is one unit of work in the extraction queue. Its status only moves
// forward Pending→Claimed→{Completed,Error}; the single backward transition is
// the explicit stuck-ticket reset (Claimed→Pending).
type Ticket struct {
	id                 uint
	sourceTicketNumber string
	sourceSystemID     int
	technicianID       uint
	dateClosed         time.Time
	status             Status
	workerID           *string
	lastUpdated        time.Time
	sourceMeta         SourceMeta
}

func NewTicket(sourceTicketNumber string, sourceSystemID int, technicianID uint, dateClosed time.Time, meta SourceMeta) (*Ticket, error) {
	if strings.TrimSpace(sourceTicketNumber) == "" {
		return nil, fmt.Errorf("source ticket number is required")
	}
	if technicianID == 0 {
		return nil, fmt.Errorf("technician ID is required")
	}

	return &Ticket{
		sourceTicketNumber: sourceTicketNumber,
		sourceSystemID:     sourceSystemID,
		technicianID:       technicianID,
		dateClosed:         dateClosed,
		status:             StatusPending,
		lastUpdated:        time.Now().UTC(),
		sourceMeta:         meta,
	}, nil
}

// ReconstructTicket rebuilds a Ticket from persistence without validation.
func ReconstructTicket(
	id uint,
	sourceTicketNumber string,
	sourceSystemID int,
	technicianID uint,
	dateClosed time.Time,
	status Status,
	workerID *string,
	lastUpdated time.Time,
	meta SourceMeta,
) *Ticket {
	return &Ticket{
		id:                 id,
		sourceTicketNumber: sourceTicketNumber,
		sourceSystemID:     sourceSystemID,
		technicianID:       technicianID,
		dateClosed:         dateClosed,
		status:             status,
		workerID:           workerID,
		lastUpdated:        lastUpdated,
		sourceMeta:         meta,
	}
}

func (t *Ticket) ID() uint                   { return t.id }
func (t *Ticket) SourceTicketNumber() string { return t.sourceTicketNumber }
func (t *Ticket) SourceSystemID() int        { return t.sourceSystemID }
func (t *Ticket) TechnicianID() uint         { return t.technicianID }
func (t *Ticket) DateClosed() time.Time      { return t.dateClosed }
func (t *Ticket) Status() Status             { return t.status }
func (t *Ticket) WorkerID() *string          { return t.workerID }
func (t *Ticket) LastUpdated() time.Time     { return t.lastUpdated }
func (t *Ticket) SourceMeta() SourceMeta     { return t.sourceMeta }

func (t *Ticket) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("ticket ID already set")
	}
	t.id = id
	return nil
}

// Claim binds the ticket to one worker.
func (t *Ticket) Claim(workerID string) error {
	if t.status != StatusPending {
		return fmt.Errorf("cannot claim ticket in status %s", t.status)
	}
	t.status = StatusClaimed
	t.workerID = &workerID
	t.lastUpdated = time.Now().UTC()
	return nil
}

// Complete marks the ticket fully processed. Completing an already-completed
// ticket is a harmless no-op so terminal updates stay idempotent.
func (t *Ticket) Complete() error {
	if t.status == StatusCompleted {
		return nil
	}
	if t.status != StatusClaimed {
		return fmt.Errorf("cannot complete ticket in status %s", t.status)
	}
	t.status = StatusCompleted
	t.lastUpdated = time.Now().UTC()
	return nil
}

// Fail marks the ticket as errored. Error tickets stay errored until an
// operator re-queues them.
func (t *Ticket) Fail() error {
	if t.status == StatusError {
		return nil
	}
	if t.status != StatusClaimed {
		return fmt.Errorf("cannot fail ticket in status %s", t.status)
	}
	t.status = StatusError
	t.lastUpdated = time.Now().UTC()
	return nil
}

// ResetToPending is the stuck-ticket recovery path for tickets orphaned by a
// crashed worker.
func (t *Ticket) ResetToPending() error {
	if t.status != StatusClaimed {
		return fmt.Errorf("cannot reset ticket in status %s", t.status)
	}
	t.status = StatusPending
	t.workerID = nil
	t.lastUpdated = time.Now().UTC()
	return nil
}
