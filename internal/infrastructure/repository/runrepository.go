package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"skillscope/internal/domain/analysis"
	"skillscope/internal/infrastructure/persistence/models"
	sharedDB "skillscope/internal/shared/db"
)

type RunRepositoryImpl struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) analysis.RunRepository {
	return &RunRepositoryImpl{db: db}
}

func (r *RunRepositoryImpl) Start(ctx context.Context, startTime time.Time) (uint, error) {
	model := models.AnalysisRunModel{
		RunStartTime: startTime,
		Status:       analysis.RunStatusRunning,
	}
	if err := sharedDB.GetTxFromContext(ctx, r.db).Create(&model).Error; err != nil {
		return 0, fmt.Errorf("failed to start analysis run: %w", err)
	}
	return model.ID, nil
}

func (r *RunRepositoryImpl) Finish(ctx context.Context, runID uint, status string, ticketsProcessed int, errorMessage string, lastTicketDate *time.Time) error {
	now := time.Now()
	updates := map[string]interface{}{
		"run_end_time":      &now,
		"status":            status,
		"tickets_processed": ticketsProcessed,
		"error_message":     errorMessage,
	}
	if lastTicketDate != nil {
		updates["last_ticket_date_processed"] = lastTicketDate
	}
	err := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.AnalysisRunModel{}).
		Where("id = ?", runID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to finish analysis run %d: %w", runID, err)
	}
	return nil
}
