package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillscope/internal/domain/analysis"
	"skillscope/internal/infrastructure/persistence/models"
	sharedDB "skillscope/internal/shared/db"
)

const checkpointRowID = 1

type CheckpointRepositoryImpl struct {
	db *gorm.DB
	tm *sharedDB.TransactionManager
}

func NewCheckpointRepository(db *gorm.DB) analysis.CheckpointRepository {
	return &CheckpointRepositoryImpl{db: db, tm: sharedDB.NewTransactionManager(db)}
}

func (r *CheckpointRepositoryImpl) LastProcessedID(ctx context.Context) (int64, error) {
	var model models.ProcessingCheckpointModel
	err := sharedDB.GetTxFromContext(ctx, r.db).
		Where("id = ?", checkpointRowID).
		First(&model).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read ingestion checkpoint: %w", err)
	}
	return model.LastProcessedTicketID, nil
}

// Advance moves the checkpoint forward. A newID at or below the current
// value leaves the row untouched, so concurrent or replayed ingestion
// passes can never move the high-water mark backwards.
func (r *CheckpointRepositoryImpl) Advance(ctx context.Context, newID int64) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := sharedDB.GetTxFromContext(txCtx, r.db)

		seed := models.ProcessingCheckpointModel{ID: checkpointRowID, LastProcessedTicketID: 0}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&seed).Error
		if err != nil {
			return fmt.Errorf("failed to seed ingestion checkpoint: %w", err)
		}

		err = tx.Model(&models.ProcessingCheckpointModel{}).
			Where("id = ? AND last_processed_ticket_id < ?", checkpointRowID, newID).
			Update("last_processed_ticket_id", newID).Error
		if err != nil {
			return fmt.Errorf("failed to advance ingestion checkpoint: %w", err)
		}
		return nil
	})
}
