package migration

import (
	"skillscope/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.TechnicianModel{},
		&models.TicketModel{},
		&models.DiscoveredSkillModel{},
		&models.TicketSkillModel{},
		&models.ManagedSkillModel{},
		&models.DistilledSkillModel{},
		&models.AnalysisRunModel{},
		&models.ProcessingCheckpointModel{},
	}
}
