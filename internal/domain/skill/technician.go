package skill

import "strings"

// UnassignedTechnicianName is the sentinel record that blank or
// whitespace-only technician names resolve to.
const UnassignedTechnicianName = "Unassigned"

type Technician struct {
	ID       uint
	Name     string
	IsActive bool
}

// NormalizeTechnicianName trims the display name and substitutes the
// unassigned sentinel for blank input.
func NormalizeTechnicianName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return UnassignedTechnicianName
	}
	return trimmed
}
