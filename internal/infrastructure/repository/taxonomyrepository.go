package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"skillscope/internal/domain/skill"
	"skillscope/internal/infrastructure/persistence/models"
	sharedDB "skillscope/internal/shared/db"
	"skillscope/internal/shared/logger"
)

type TaxonomyRepositoryImpl struct {
	db     *gorm.DB
	tm     *sharedDB.TransactionManager
	logger logger.Interface
}

func NewTaxonomyRepository(db *gorm.DB, log logger.Interface) skill.TaxonomyRepository {
	return &TaxonomyRepositoryImpl{
		db:     db,
		tm:     sharedDB.NewTransactionManager(db),
		logger: log,
	}
}

func (r *TaxonomyRepositoryImpl) UnassociatedBatch(ctx context.Context, batchSize int) ([]string, error) {
	var names []string
	err := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.DiscoveredSkillModel{}).
		Where("managed_skill_id IS NULL").
		Order("id").
		Limit(batchSize).
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unassociated skill batch: %w", err)
	}
	return names, nil
}

func (r *TaxonomyRepositoryImpl) UnassociatedCount(ctx context.Context) (int64, error) {
	var count int64
	err := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.DiscoveredSkillModel{}).
		Where("managed_skill_id IS NULL").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unassociated skills: %w", err)
	}
	return count, nil
}

func (r *TaxonomyRepositoryImpl) AssociatedCount(ctx context.Context) (int64, error) {
	var count int64
	err := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.DiscoveredSkillModel{}).
		Where("managed_skill_id IS NOT NULL").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count associated skills: %w", err)
	}
	return count, nil
}

func (r *TaxonomyRepositoryImpl) AssociateDiscovered(ctx context.Context, discoveredSkillID, managedSkillID uint) error {
	result := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.DiscoveredSkillModel{}).
		Where("id = ?", discoveredSkillID).
		Update("managed_skill_id", managedSkillID)
	if result.Error != nil {
		return fmt.Errorf("failed to associate discovered skill %d: %w", discoveredSkillID, result.Error)
	}
	return nil
}
