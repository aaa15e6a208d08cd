package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillscope/internal/infrastructure/persistence/models"
	sharedDB "skillscope/internal/shared/db"
	"skillscope/internal/shared/llmjson"
)

// ApplyManagedGroups links discovered skills to managed skills. Each group's
// canonical name is created on first sight; duplicate canonical names across
// groups in the same batch resolve to the same row. The whole batch applies
// in one transaction so a resubmitted batch is a no-op beyond re-linking.
func (r *TaxonomyRepositoryImpl) ApplyManagedGroups(ctx context.Context, groups []llmjson.Group) error {
	if len(groups) == 0 {
		return nil
	}
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := sharedDB.GetTxFromContext(txCtx, r.db)

		parentIDs := make(map[string]uint, len(groups))
		for _, g := range groups {
			if _, ok := parentIDs[g.CanonicalName]; ok {
				continue
			}
			id, err := getOrCreateManagedSkill(tx, g.CanonicalName)
			if err != nil {
				return err
			}
			parentIDs[g.CanonicalName] = id
		}

		for _, g := range groups {
			err := tx.Model(&models.DiscoveredSkillModel{}).
				Where("name IN ?", g.OriginalSkills).
				Update("managed_skill_id", parentIDs[g.CanonicalName]).Error
			if err != nil {
				return fmt.Errorf("failed to link discovered skills to %q: %w", g.CanonicalName, err)
			}
		}
		return nil
	})
}

// ApplyDistilledGroups does the same one tier up: managed skills get linked
// to distilled skills.
func (r *TaxonomyRepositoryImpl) ApplyDistilledGroups(ctx context.Context, groups []llmjson.Group) error {
	if len(groups) == 0 {
		return nil
	}
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := sharedDB.GetTxFromContext(txCtx, r.db)

		parentIDs := make(map[string]uint, len(groups))
		for _, g := range groups {
			if _, ok := parentIDs[g.CanonicalName]; ok {
				continue
			}
			id, err := getOrCreateDistilledSkill(tx, g.CanonicalName)
			if err != nil {
				return err
			}
			parentIDs[g.CanonicalName] = id
		}

		for _, g := range groups {
			err := tx.Model(&models.ManagedSkillModel{}).
				Where("name IN ?", g.OriginalSkills).
				Update("distilled_skill_id", parentIDs[g.CanonicalName]).Error
			if err != nil {
				return fmt.Errorf("failed to link managed skills to %q: %w", g.CanonicalName, err)
			}
		}
		return nil
	})
}

func getOrCreateManagedSkill(tx *gorm.DB, name string) (uint, error) {
	model := models.ManagedSkillModel{
		Name:        name,
		Description: fmt.Sprintf("Auto-generated for '%s'", name),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&model).Error
	if err != nil {
		return 0, fmt.Errorf("failed to create managed skill %q: %w", name, err)
	}
	if model.ID == 0 {
		if err := tx.Where("name = ?", name).First(&model).Error; err != nil {
			return 0, fmt.Errorf("failed to fetch managed skill %q: %w", name, err)
		}
	}
	return model.ID, nil
}

func getOrCreateDistilledSkill(tx *gorm.DB, name string) (uint, error) {
	model := models.DistilledSkillModel{
		Name:        name,
		Description: fmt.Sprintf("Auto-generated for '%s'", name),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&model).Error
	if err != nil {
		return 0, fmt.Errorf("failed to create distilled skill %q: %w", name, err)
	}
	if model.ID == 0 {
		if err := tx.Where("name = ?", name).First(&model).Error; err != nil {
			return 0, fmt.Errorf("failed to fetch distilled skill %q: %w", name, err)
		}
	}
	return model.ID, nil
}
