// Package reporting defines the read models served by the analytics API.
package reporting

import (
	"context"
	"time"
)

// SkillFrequency is a skill name with how many tickets it appeared on.
type SkillFrequency struct {
	ID        uint   `json:"id,omitempty"`
	Name      string `json:"name"`
	Frequency int64  `json:"frequency"`
}

// TechnicianSkill ranks technicians for one managed skill.
type TechnicianSkill struct {
	TechnicianName string `json:"technician_name"`
	Frequency      int64  `json:"frequency"`
}

// Throughput summarises completed-ticket processing speed. TicketsPerHour is
// zero until at least two tickets have completed.
type Throughput struct {
	TotalCompleted  int64      `json:"total_completed"`
	FirstCompletion *time.Time `json:"first_completion,omitempty"`
	LastCompletion  *time.Time `json:"last_completion,omitempty"`
	TicketsPerHour  float64    `json:"tickets_per_hour"`
}

type Repository interface {
	TopDiscoveredSkills(ctx context.Context, count int) ([]SkillFrequency, error)
	ManagedSkillOccurrences(ctx context.Context) ([]SkillFrequency, error)
	TopUnassociatedSkills(ctx context.Context, count int) ([]SkillFrequency, error)
	ManagedSkillsByTechnician(ctx context.Context, technicianID uint) ([]SkillFrequency, error)
	TechniciansByManagedSkill(ctx context.Context, managedSkillName string) ([]TechnicianSkill, error)
	CompletionThroughput(ctx context.Context) (*Throughput, error)
}
