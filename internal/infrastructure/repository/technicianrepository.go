package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillscope/internal/domain/skill"
	"skillscope/internal/infrastructure/persistence/models"
	sharedDB "skillscope/internal/shared/db"
)

type TechnicianRepositoryImpl struct {
	db *gorm.DB
}

func NewTechnicianRepository(db *gorm.DB) skill.TechnicianRepository {
	return &TechnicianRepositoryImpl{db: db}
}

func (r *TechnicianRepositoryImpl) GetOrCreate(ctx context.Context, name string) (uint, error) {
	normalized := skill.NormalizeTechnicianName(name)

	tx := sharedDB.GetTxFromContext(ctx, r.db)
	model := models.TechnicianModel{Name: normalized, IsActive: true}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&model).Error; err != nil {
		return 0, fmt.Errorf("failed to create technician %q: %w", normalized, err)
	}

	if model.ID == 0 {
		if err := tx.Where("name = ?", normalized).First(&model).Error; err != nil {
			return 0, fmt.Errorf("failed to fetch technician %q: %w", normalized, err)
		}
	}
	return model.ID, nil
}

func (r *TechnicianRepositoryImpl) ListActive(ctx context.Context) ([]*skill.Technician, error) {
	var modelList []*models.TechnicianModel
	err := sharedDB.GetTxFromContext(ctx, r.db).
		Where("is_active = ?", true).
		Order("name").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list technicians: %w", err)
	}

	technicians := make([]*skill.Technician, 0, len(modelList))
	for _, m := range modelList {
		technicians = append(technicians, &skill.Technician{ID: m.ID, Name: m.Name, IsActive: m.IsActive})
	}
	return technicians, nil
}
