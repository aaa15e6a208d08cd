package models

import (
	"time"

	"gorm.io/datatypes"
)

type TicketModel struct {
	ID                 uint    `gorm:"primaryKey"`
	SourceTicketNumber string  `gorm:"size:50;not null;uniqueIndex"`
	SourceSystemID     int     `gorm:"not null;default:1"`
	TechnicianID       uint    `gorm:"not null;index"`
	DateClosed         time.Time
	ProcessingStatusID int     `gorm:"not null;default:0;index"`
	WorkerID           *string `gorm:"size:64;index"`
	LastUpdated        time.Time
	SourceMeta         datatypes.JSON
}

func (TicketModel) TableName() string {
	return "tickets"
}
