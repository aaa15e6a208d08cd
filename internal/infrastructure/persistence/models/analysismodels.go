package models

import "time"

type AnalysisRunModel struct {
	ID                      uint      `gorm:"primaryKey"`
	RunStartTime            time.Time `gorm:"not null"`
	RunEndTime              *time.Time
	Status                  string `gorm:"size:50;not null"`
	TicketsProcessed        int    `gorm:"not null;default:0"`
	ErrorMessage            string `gorm:"size:2048"`
	LastTicketDateProcessed *time.Time
}

func (AnalysisRunModel) TableName() string {
	return "analysis_runs"
}

// ProcessingCheckpointModel is a single-row table holding the ingestion
// high-water mark.
type ProcessingCheckpointModel struct {
	ID                    uint  `gorm:"primaryKey"`
	LastProcessedTicketID int64 `gorm:"not null;default:0"`
}

func (ProcessingCheckpointModel) TableName() string {
	return "processing_checkpoint"
}
