package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillscope/internal/domain/queue"
	"skillscope/internal/infrastructure/persistence/mappers"
	"skillscope/internal/infrastructure/persistence/models"
	sharedDB "skillscope/internal/shared/db"
	"skillscope/internal/shared/errors"
	"skillscope/internal/shared/logger"
)

type QueueRepositoryImpl struct {
	db     *gorm.DB
	tm     *sharedDB.TransactionManager
	mapper mappers.TicketMapper
	logger logger.Interface
}

func NewQueueRepository(db *gorm.DB, log logger.Interface) queue.Repository {
	return &QueueRepositoryImpl{
		db:     db,
		tm:     sharedDB.NewTransactionManager(db),
		mapper: mappers.NewTicketMapper(),
		logger: log,
	}
}

func (r *QueueRepositoryImpl) Enqueue(ctx context.Context, t *queue.Ticket) (bool, error) {
	model, err := r.mapper.ToModel(t)
	if err != nil {
		return false, fmt.Errorf("failed to map ticket entity to model: %w", err)
	}

	tx := sharedDB.GetTxFromContext(ctx, r.db)
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_ticket_number"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to enqueue ticket %s: %w", t.SourceTicketNumber(), result.Error)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}
	if err := t.SetID(model.ID); err != nil {
		return true, fmt.Errorf("failed to set ticket ID: %w", err)
	}
	return true, nil
}

// ClaimBatch claims pending tickets with a Pending-guarded UPDATE so that
// two concurrent workers never receive overlapping rows; under contention a
// worker may simply get fewer tickets than it asked for.
func (r *QueueRepositoryImpl) ClaimBatch(ctx context.Context, workerID string, batchSize int) ([]*queue.Ticket, error) {
	if batchSize <= 0 {
		return nil, errors.NewValidationError("batch size must be positive")
	}

	var modelList []*models.TicketModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidateIDs []uint
		if err := tx.Raw(
			`SELECT id FROM tickets
			  WHERE processing_status_id = ?
			  ORDER BY id
			  LIMIT ?`,
			int(queue.StatusPending), batchSize,
		).Scan(&candidateIDs).Error; err != nil {
			return fmt.Errorf("failed to select claimable tickets: %w", err)
		}
		if len(candidateIDs) == 0 {
			return nil
		}

		// The Pending guard makes the claim atomic: a candidate another
		// worker got to first updates zero rows here and drops out of the
		// re-select below.
		result := tx.Exec(
			`UPDATE tickets
			    SET processing_status_id = ?, worker_id = ?, last_updated = ?
			  WHERE id IN ? AND processing_status_id = ?`,
			int(queue.StatusClaimed), workerID, time.Now().UTC(),
			candidateIDs, int(queue.StatusPending),
		)
		if result.Error != nil {
			return fmt.Errorf("failed to claim ticket batch: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		// Scoped to the candidate IDs so a ticket this worker claimed
		// earlier but failed to move to a terminal status is never handed
		// back.
		if err := tx.
			Where("id IN ? AND worker_id = ? AND processing_status_id = ?",
				candidateIDs, workerID, int(queue.StatusClaimed)).
			Order("id").
			Find(&modelList).Error; err != nil {
			return fmt.Errorf("failed to load claimed tickets: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(modelList)
}

func (r *QueueRepositoryImpl) UpdateStatus(ctx context.Context, ticketID uint, status queue.Status) error {
	if !status.IsTerminal() {
		return errors.NewValidationError(fmt.Sprintf("status %s is not terminal", status))
	}

	tx := sharedDB.GetTxFromContext(ctx, r.db)

	// Only Claimed tickets move to a terminal status; re-applying the same
	// terminal status is an idempotent refresh of last_updated.
	result := tx.Model(&models.TicketModel{}).
		Where("id = ? AND processing_status_id IN ?", ticketID, []int{int(queue.StatusClaimed), int(status)}).
		Updates(map[string]interface{}{
			"processing_status_id": int(status),
			"last_updated":         time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update ticket %d status: %w", ticketID, result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.TicketModel{}).Where("id = ?", ticketID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check ticket %d: %w", ticketID, err)
		}
		if count == 0 {
			return errors.NewNotFoundError("ticket not found")
		}
		return errors.NewConflictError(fmt.Sprintf("ticket %d cannot transition to %s", ticketID, status))
	}
	return nil
}

func (r *QueueRepositoryImpl) SaveSkills(ctx context.Context, ticketID uint, skillNames []string) error {
	tx := sharedDB.GetTxFromContext(ctx, r.db)

	for _, name := range skillNames {
		if name == "" {
			continue
		}

		skillID, err := getOrCreateDiscoveredSkill(tx, name)
		if err != nil {
			return err
		}

		link := models.TicketSkillModel{TicketID: ticketID, DiscoveredSkillID: skillID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link skill %q to ticket %d: %w", name, ticketID, err)
		}
	}
	return nil
}

func (r *QueueRepositoryImpl) CompleteWithSkills(ctx context.Context, ticketID uint, skillNames []string) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := r.SaveSkills(txCtx, ticketID, skillNames); err != nil {
			return err
		}
		return r.UpdateStatus(txCtx, ticketID, queue.StatusCompleted)
	})
}

func (r *QueueRepositoryImpl) ResetStuck(ctx context.Context) (int64, error) {
	return r.resetStatus(ctx, queue.StatusClaimed)
}

func (r *QueueRepositoryImpl) RequeueErrors(ctx context.Context) (int64, error) {
	return r.resetStatus(ctx, queue.StatusError)
}

func (r *QueueRepositoryImpl) resetStatus(ctx context.Context, from queue.Status) (int64, error) {
	result := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.TicketModel{}).
		Where("processing_status_id = ?", int(from)).
		Updates(map[string]interface{}{
			"processing_status_id": int(queue.StatusPending),
			"worker_id":            nil,
			"last_updated":         time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reset %s tickets: %w", from, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *QueueRepositoryImpl) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	err := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.TicketModel{}).
		Where("processing_status_id = ?", int(queue.StatusPending)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending tickets: %w", err)
	}
	return count, nil
}

func (r *QueueRepositoryImpl) StatusCounts(ctx context.Context) (map[queue.Status]int64, error) {
	var rows []struct {
		ProcessingStatusID int
		Total              int64
	}
	err := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.TicketModel{}).
		Select("processing_status_id, COUNT(*) AS total").
		Group("processing_status_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets by status: %w", err)
	}

	counts := make(map[queue.Status]int64, len(rows))
	for _, row := range rows {
		counts[queue.Status(row.ProcessingStatusID)] = row.Total
	}
	return counts, nil
}

func (r *QueueRepositoryImpl) ActiveClaims(ctx context.Context) ([]queue.WorkerStatus, error) {
	var modelList []*models.TicketModel
	err := sharedDB.GetTxFromContext(ctx, r.db).
		Where("processing_status_id = ?", int(queue.StatusClaimed)).
		Order("worker_id, id").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active claims: %w", err)
	}

	claims := make([]queue.WorkerStatus, 0, len(modelList))
	for _, m := range modelList {
		workerID := ""
		if m.WorkerID != nil {
			workerID = *m.WorkerID
		}
		claims = append(claims, queue.WorkerStatus{
			WorkerID:           workerID,
			SourceTicketNumber: m.SourceTicketNumber,
			LastUpdated:        m.LastUpdated.UTC().Format(time.RFC3339),
		})
	}
	return claims, nil
}

// getOrCreateDiscoveredSkill is the race-safe insert-if-absent used by every
// worker. The conflict clause absorbs the losing side of a concurrent insert.
func getOrCreateDiscoveredSkill(tx *gorm.DB, name string) (uint, error) {
	model := models.DiscoveredSkillModel{Name: name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&model).Error; err != nil {
		return 0, fmt.Errorf("failed to create discovered skill %q: %w", name, err)
	}

	if model.ID == 0 {
		if err := tx.Where("name = ?", name).First(&model).Error; err != nil {
			return 0, fmt.Errorf("failed to fetch discovered skill %q: %w", name, err)
		}
	}
	return model.ID, nil
}
