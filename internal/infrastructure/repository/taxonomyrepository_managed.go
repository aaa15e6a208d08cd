package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"skillscope/internal/domain/skill"
	"skillscope/internal/infrastructure/persistence/models"
	sharedDB "skillscope/internal/shared/db"
	"skillscope/internal/shared/errors"
)

func (r *TaxonomyRepositoryImpl) ListManaged(ctx context.Context) ([]*skill.ManagedSkill, error) {
	var modelList []*models.ManagedSkillModel
	err := sharedDB.GetTxFromContext(ctx, r.db).Order("name").Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list managed skills: %w", err)
	}

	skills := make([]*skill.ManagedSkill, 0, len(modelList))
	for _, m := range modelList {
		skills = append(skills, managedToEntity(m))
	}
	return skills, nil
}

func (r *TaxonomyRepositoryImpl) CreateManaged(ctx context.Context, name, description string, isException bool) (*skill.ManagedSkill, error) {
	model := models.ManagedSkillModel{Name: name, Description: description, IsException: isException}
	if err := sharedDB.GetTxFromContext(ctx, r.db).Create(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to create managed skill %q: %w", name, err)
	}
	return managedToEntity(&model), nil
}

func (r *TaxonomyRepositoryImpl) UpdateManaged(ctx context.Context, id uint, name, description string, isException bool) error {
	result := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.ManagedSkillModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":         name,
			"description":  description,
			"is_exception": isException,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update managed skill %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("managed skill not found")
	}
	return nil
}

// DeleteManaged removes the skill and un-parents its discovered children;
// they return to the unassociated pool rather than being cascade-deleted.
func (r *TaxonomyRepositoryImpl) DeleteManaged(ctx context.Context, id uint) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := sharedDB.GetTxFromContext(txCtx, r.db)

		if err := tx.Model(&models.DiscoveredSkillModel{}).
			Where("managed_skill_id = ?", id).
			Update("managed_skill_id", nil).Error; err != nil {
			return fmt.Errorf("failed to un-parent discovered skills: %w", err)
		}

		result := tx.Delete(&models.ManagedSkillModel{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete managed skill %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFoundError("managed skill not found")
		}
		return nil
	})
}

// MergeManaged re-parents every discovered skill of sourceID onto targetID
// and deletes the source, atomically. A missing target fails the whole
// operation with no partial reparenting.
func (r *TaxonomyRepositoryImpl) MergeManaged(ctx context.Context, sourceID, targetID uint) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := sharedDB.GetTxFromContext(txCtx, r.db)
		return mergeSkillRows(tx, sourceID, targetID,
			&models.ManagedSkillModel{},
			&models.DiscoveredSkillModel{}, "managed_skill_id")
	})
}

func (r *TaxonomyRepositoryImpl) ManagedCount(ctx context.Context) (int64, error) {
	var count int64
	err := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.ManagedSkillModel{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count managed skills: %w", err)
	}
	return count, nil
}

// UnassociatedManagedBatch feeds the distillation pass. Exception skills are
// noise buckets and never offered for further grouping.
func (r *TaxonomyRepositoryImpl) UnassociatedManagedBatch(ctx context.Context, batchSize int) ([]string, error) {
	var names []string
	err := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.ManagedSkillModel{}).
		Where("distilled_skill_id IS NULL AND is_exception = ?", false).
		Order("id").
		Limit(batchSize).
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unassociated managed batch: %w", err)
	}
	return names, nil
}

func (r *TaxonomyRepositoryImpl) UnassociatedManagedCount(ctx context.Context) (int64, error) {
	var count int64
	err := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.ManagedSkillModel{}).
		Where("distilled_skill_id IS NULL AND is_exception = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unassociated managed skills: %w", err)
	}
	return count, nil
}

func (r *TaxonomyRepositoryImpl) AssociateManaged(ctx context.Context, managedSkillID, distilledSkillID uint) error {
	result := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.ManagedSkillModel{}).
		Where("id = ?", managedSkillID).
		Update("distilled_skill_id", distilledSkillID)
	if result.Error != nil {
		return fmt.Errorf("failed to associate managed skill %d: %w", managedSkillID, result.Error)
	}
	return nil
}

func managedToEntity(m *models.ManagedSkillModel) *skill.ManagedSkill {
	return &skill.ManagedSkill{
		ID:               m.ID,
		Name:             m.Name,
		Description:      m.Description,
		IsException:      m.IsException,
		DistilledSkillID: m.DistilledSkillID,
	}
}

// mergeSkillRows is the shared merge step for both taxonomy tiers: verify the
// target exists, repoint children, drop the source.
func mergeSkillRows(tx *gorm.DB, sourceID, targetID uint, parentModel interface{}, childModel interface{}, parentColumn string) error {
	var count int64
	if err := tx.Model(parentModel).Where("id = ?", targetID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check merge target %d: %w", targetID, err)
	}
	if count == 0 {
		return errors.NewNotFoundError("merge target not found")
	}

	if err := tx.Model(childModel).
		Where(parentColumn+" = ?", sourceID).
		Update(parentColumn, targetID).Error; err != nil {
		return fmt.Errorf("failed to re-parent children of %d: %w", sourceID, err)
	}

	result := tx.Delete(parentModel, sourceID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete merged skill %d: %w", sourceID, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("merge source not found")
	}
	return nil
}
