package skill

import (
	"context"

	"skillscope/internal/shared/llmjson"
)

// TaxonomyRepository is the write path into the skill hierarchy plus the
// batch queries driving the consolidation passes.
type TaxonomyRepository interface {
	// Discovered tier.
	UnassociatedBatch(ctx context.Context, batchSize int) ([]string, error)
	UnassociatedCount(ctx context.Context) (int64, error)
	AssociatedCount(ctx context.Context) (int64, error)
	AssociateDiscovered(ctx context.Context, discoveredSkillID, managedSkillID uint) error

	// Managed tier.
	ListManaged(ctx context.Context) ([]*ManagedSkill, error)
	CreateManaged(ctx context.Context, name, description string, isException bool) (*ManagedSkill, error)
	UpdateManaged(ctx context.Context, id uint, name, description string, isException bool) error
	DeleteManaged(ctx context.Context, id uint) error
	MergeManaged(ctx context.Context, sourceID, targetID uint) error
	ManagedCount(ctx context.Context) (int64, error)
	UnassociatedManagedBatch(ctx context.Context, batchSize int) ([]string, error)
	UnassociatedManagedCount(ctx context.Context) (int64, error)
	AssociateManaged(ctx context.Context, managedSkillID, distilledSkillID uint) error

	// Distilled tier.
	ListDistilled(ctx context.Context) ([]*DistilledSkill, error)
	CreateDistilled(ctx context.Context, name, description string) (*DistilledSkill, error)
	UpdateDistilled(ctx context.Context, id uint, name, description string) error
	DeleteDistilled(ctx context.Context, id uint) error
	MergeDistilled(ctx context.Context, sourceID, targetID uint) error

	// ApplyManagedGroups applies one meta-analysis result in a single
	// transaction: get-or-create each canonical managed skill, then relink
	// the named discovered skills. Re-applying the same result is idempotent.
	ApplyManagedGroups(ctx context.Context, groups []llmjson.Group) error

	// ApplyDistilledGroups is the identical algorithm one tier up.
	ApplyDistilledGroups(ctx context.Context, groups []llmjson.Group) error
}

// TechnicianRepository resolves technician display names to IDs.
type TechnicianRepository interface {
	// GetOrCreate is race-safe: concurrent callers with the same name
	// converge on a single ID without surfacing a uniqueness violation.
	GetOrCreate(ctx context.Context, name string) (uint, error)
	ListActive(ctx context.Context) ([]*Technician, error)
}
