// Package analysis holds the run audit trail and the ingestion checkpoint.
package analysis

import "time"

const (
	RunStatusRunning   = "Running"
	RunStatusCompleted = "Completed"
	RunStatusFailed    = "Failed"
	RunStatusStopped   = "Stopped"
)

// Run is the audit record of one worker execution.
type Run struct {
	ID                      uint
	StartTime               time.Time
	EndTime                 *time.Time
	Status                  string
	TicketsProcessed        int
	ErrorMessage            string
	LastTicketDateProcessed *time.Time
}
