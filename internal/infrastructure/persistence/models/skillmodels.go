package models

type DiscoveredSkillModel struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:255;not null;uniqueIndex"`
	ManagedSkillID *uint  `gorm:"index"`
}

func (DiscoveredSkillModel) TableName() string {
	return "discovered_skills"
}

// TicketSkillModel records "this ticket mentions this skill". Append-only;
// the composite primary key makes repeated links naturally conflict.
type TicketSkillModel struct {
	TicketID          uint `gorm:"primaryKey;autoIncrement:false"`
	DiscoveredSkillID uint `gorm:"primaryKey;autoIncrement:false"`
}

func (TicketSkillModel) TableName() string {
	return "ticket_skills"
}

type ManagedSkillModel struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"size:255;not null;uniqueIndex"`
	Description      string `gorm:"size:1024"`
	IsException      bool   `gorm:"not null;default:false"`
	DistilledSkillID *uint  `gorm:"index"`
}

func (ManagedSkillModel) TableName() string {
	return "managed_skills"
}

type DistilledSkillModel struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null;uniqueIndex"`
	Description string `gorm:"size:1024"`
}

func (DistilledSkillModel) TableName() string {
	return "distilled_skills"
}

type TechnicianModel struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:255;not null;uniqueIndex"`
	IsActive bool   `gorm:"not null;default:true"`
}

func (TechnicianModel) TableName() string {
	return "technicians"
}
