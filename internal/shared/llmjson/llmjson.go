// Package llmjson extracts structured data from free-form LLM output.
//
// Model responses are not trusted structured output: they may wrap JSON in
// prose or code fences, truncate it, or return none at all. Every parse
// failure degrades to "nothing extracted" so a bad response costs one unit of
// work, never a worker.
package llmjson

import (
	"encoding/json"
	"regexp"
)

var (
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	arrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
)

// Group is one canonical grouping proposed by a consolidation pass. The
// meta-analysis and distillation prompts use different key names for the same
// shape, so both sets are accepted.
type Group struct {
	CanonicalName  string
	OriginalSkills []string
}

func (g *Group) UnmarshalJSON(data []byte) error {
	var raw struct {
		CanonicalName         string   `json:"canonical_name"`
		OriginalSkills        []string `json:"original_skills"`
		DistilledName         string   `json:"distilled_name"`
		OriginalManagedSkills []string `json:"original_managed_skills"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.CanonicalName = raw.CanonicalName
	g.OriginalSkills = raw.OriginalSkills
	if g.CanonicalName == "" {
		g.CanonicalName = raw.DistilledName
	}
	if len(g.OriginalSkills) == 0 {
		g.OriginalSkills = raw.OriginalManagedSkills
	}
	return nil
}

// ParseSkills extracts the "skills" array from the outermost JSON object in
// raw. It returns an empty slice for missing, malformed, or mistyped payloads.
// Non-string and empty elements are dropped.
func ParseSkills(raw string) []string {
	match := objectPattern.FindString(raw)
	if match == "" {
		return nil
	}

	var payload struct {
		Skills []any `json:"skills"`
	}
	if err := json.Unmarshal([]byte(match), &payload); err != nil {
		return nil
	}

	skills := make([]string, 0, len(payload.Skills))
	for _, item := range payload.Skills {
		if s, ok := item.(string); ok && s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// ParseGroups extracts the outermost JSON array of skill groupings from raw.
// Groups with a blank canonical name or no member skills are dropped; a
// malformed payload yields an empty result.
func ParseGroups(raw string) []Group {
	match := arrayPattern.FindString(raw)
	if match == "" {
		return nil
	}

	var parsed []Group
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil
	}

	groups := make([]Group, 0, len(parsed))
	for _, g := range parsed {
		if g.CanonicalName == "" || len(g.OriginalSkills) == 0 {
			continue
		}
		members := make([]string, 0, len(g.OriginalSkills))
		for _, name := range g.OriginalSkills {
			if name != "" {
				members = append(members, name)
			}
		}
		if len(members) == 0 {
			continue
		}
		groups = append(groups, Group{CanonicalName: g.CanonicalName, OriginalSkills: members})
	}
	return groups
}
