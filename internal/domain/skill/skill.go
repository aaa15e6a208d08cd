// Package skill holds the three-tier skill taxonomy: raw terms discovered by
// the model, curated managed categories, and broad distilled categories.
package skill

// DiscoveredSkill is a skill term exactly as extracted from ticket text.
type DiscoveredSkill struct {
	ID             uint
	Name           string
	ManagedSkillID *uint
}

// ManagedSkill is a canonical category grouping one or more discovered
// skills. IsException marks a noise bucket excluded from further automated
// grouping.
type ManagedSkill struct {
	ID               uint
	Name             string
	Description      string
	IsException      bool
	DistilledSkillID *uint
}

// DistilledSkill is the top of the hierarchy, grouping managed skills.
type DistilledSkill struct {
	ID          uint
	Name        string
	Description string
}

// TaxonomyCounts are the headline metrics shown by the reporting side.
type TaxonomyCounts struct {
	Unassociated      int64 `json:"unassociated"`
	Associated        int64 `json:"associated"`
	Managed           int64 `json:"managed"`
	DistillationReady int64 `json:"distillation_ready"`
}
