package repository

import (
	"context"
	"fmt"

	"skillscope/internal/domain/skill"
	"skillscope/internal/infrastructure/persistence/models"
	sharedDB "skillscope/internal/shared/db"
	"skillscope/internal/shared/errors"
)

func (r *TaxonomyRepositoryImpl) ListDistilled(ctx context.Context) ([]*skill.DistilledSkill, error) {
	var modelList []*models.DistilledSkillModel
	err := sharedDB.GetTxFromContext(ctx, r.db).Order("name").Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list distilled skills: %w", err)
	}

	skills := make([]*skill.DistilledSkill, 0, len(modelList))
	for _, m := range modelList {
		skills = append(skills, &skill.DistilledSkill{ID: m.ID, Name: m.Name, Description: m.Description})
	}
	return skills, nil
}

func (r *TaxonomyRepositoryImpl) CreateDistilled(ctx context.Context, name, description string) (*skill.DistilledSkill, error) {
	model := models.DistilledSkillModel{Name: name, Description: description}
	if err := sharedDB.GetTxFromContext(ctx, r.db).Create(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to create distilled skill %q: %w", name, err)
	}
	return &skill.DistilledSkill{ID: model.ID, Name: model.Name, Description: model.Description}, nil
}

func (r *TaxonomyRepositoryImpl) UpdateDistilled(ctx context.Context, id uint, name, description string) error {
	result := sharedDB.GetTxFromContext(ctx, r.db).Model(&models.DistilledSkillModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "description": description})
	if result.Error != nil {
		return fmt.Errorf("failed to update distilled skill %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("distilled skill not found")
	}
	return nil
}

func (r *TaxonomyRepositoryImpl) DeleteDistilled(ctx context.Context, id uint) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := sharedDB.GetTxFromContext(txCtx, r.db)

		if err := tx.Model(&models.ManagedSkillModel{}).
			Where("distilled_skill_id = ?", id).
			Update("distilled_skill_id", nil).Error; err != nil {
			return fmt.Errorf("failed to un-parent managed skills: %w", err)
		}

		result := tx.Delete(&models.DistilledSkillModel{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete distilled skill %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFoundError("distilled skill not found")
		}
		return nil
	})
}

func (r *TaxonomyRepositoryImpl) MergeDistilled(ctx context.Context, sourceID, targetID uint) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := sharedDB.GetTxFromContext(txCtx, r.db)
		return mergeSkillRows(tx, sourceID, targetID,
			&models.DistilledSkillModel{},
			&models.ManagedSkillModel{}, "distilled_skill_id")
	})
}
