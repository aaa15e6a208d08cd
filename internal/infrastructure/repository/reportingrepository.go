package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"skillscope/internal/domain/queue"
	"skillscope/internal/domain/reporting"
)

type ReportingRepositoryImpl struct {
	db *gorm.DB
}

func NewReportingRepository(db *gorm.DB) reporting.Repository {
	return &ReportingRepositoryImpl{db: db}
}

func (r *ReportingRepositoryImpl) TopDiscoveredSkills(ctx context.Context, count int) ([]reporting.SkillFrequency, error) {
	var rows []reporting.SkillFrequency
	err := r.db.WithContext(ctx).
		Table("discovered_skills ds").
		Select("ds.name AS name, COUNT(ts.ticket_id) AS frequency").
		Joins("JOIN ticket_skills ts ON ds.id = ts.discovered_skill_id").
		Group("ds.name").
		Order("frequency DESC").
		Limit(count).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query top discovered skills: %w", err)
	}
	return rows, nil
}

func (r *ReportingRepositoryImpl) ManagedSkillOccurrences(ctx context.Context) ([]reporting.SkillFrequency, error) {
	var rows []reporting.SkillFrequency
	err := r.db.WithContext(ctx).
		Table("managed_skills ms").
		Select("ms.name AS name, COUNT(ts.ticket_id) AS frequency").
		Joins("JOIN discovered_skills ds ON ms.id = ds.managed_skill_id").
		Joins("JOIN ticket_skills ts ON ds.id = ts.discovered_skill_id").
		Group("ms.name").
		Order("frequency DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query managed skill occurrences: %w", err)
	}
	return rows, nil
}

func (r *ReportingRepositoryImpl) TopUnassociatedSkills(ctx context.Context, count int) ([]reporting.SkillFrequency, error) {
	var rows []reporting.SkillFrequency
	err := r.db.WithContext(ctx).
		Table("discovered_skills ds").
		Select("ds.id AS id, ds.name AS name, COUNT(ts.ticket_id) AS frequency").
		Joins("JOIN ticket_skills ts ON ds.id = ts.discovered_skill_id").
		Where("ds.managed_skill_id IS NULL").
		Group("ds.id, ds.name").
		Order("frequency DESC").
		Limit(count).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query top unassociated skills: %w", err)
	}
	return rows, nil
}

func (r *ReportingRepositoryImpl) ManagedSkillsByTechnician(ctx context.Context, technicianID uint) ([]reporting.SkillFrequency, error) {
	var rows []reporting.SkillFrequency
	err := r.db.WithContext(ctx).
		Table("tickets t").
		Select("ms.name AS name, COUNT(ts.ticket_id) AS frequency").
		Joins("JOIN ticket_skills ts ON t.id = ts.ticket_id").
		Joins("JOIN discovered_skills ds ON ts.discovered_skill_id = ds.id").
		Joins("JOIN managed_skills ms ON ds.managed_skill_id = ms.id").
		Where("t.technician_id = ?", technicianID).
		Group("ms.name").
		Order("frequency DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query skills for technician %d: %w", technicianID, err)
	}
	return rows, nil
}

func (r *ReportingRepositoryImpl) TechniciansByManagedSkill(ctx context.Context, managedSkillName string) ([]reporting.TechnicianSkill, error) {
	var rows []reporting.TechnicianSkill
	err := r.db.WithContext(ctx).
		Table("managed_skills ms").
		Select("tech.name AS technician_name, COUNT(ts.ticket_id) AS frequency").
		Joins("JOIN discovered_skills ds ON ms.id = ds.managed_skill_id").
		Joins("JOIN ticket_skills ts ON ds.id = ts.discovered_skill_id").
		Joins("JOIN tickets t ON ts.ticket_id = t.id").
		Joins("JOIN technicians tech ON t.technician_id = tech.id").
		Where("ms.name = ?", managedSkillName).
		Group("tech.name").
		Order("frequency DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query technicians for skill %q: %w", managedSkillName, err)
	}
	return rows, nil
}

// CompletionThroughput derives tickets/hour from the spread between the
// first and last completion timestamps. Fewer than two completions gives
// a rate of zero rather than a misleading spike.
func (r *ReportingRepositoryImpl) CompletionThroughput(ctx context.Context) (*reporting.Throughput, error) {
	var row reporting.Throughput
	err := r.db.WithContext(ctx).
		Table("tickets").
		Select("COUNT(id) AS total_completed, MIN(last_updated) AS first_completion, MAX(last_updated) AS last_completion").
		Where("processing_status_id = ?", int(queue.StatusCompleted)).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query completion throughput: %w", err)
	}

	if row.TotalCompleted > 1 && row.FirstCompletion != nil && row.LastCompletion != nil {
		hours := row.LastCompletion.Sub(*row.FirstCompletion).Hours()
		if hours > 0 {
			row.TicketsPerHour = float64(row.TotalCompleted) / hours
		}
	}
	return &row, nil
}
