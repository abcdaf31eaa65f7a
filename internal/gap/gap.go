// Package gap reconciles extracted CV skills against a position's
// requirements. Reconcile is pure: same inputs, same output, no I/O.
package gap

import (
	"math"
	"sort"
	"strings"

	"skillgap-backend/internal/skills"
)

// Requirement is one skill a position demands.
type Requirement struct {
	Name          string       `json:"name"`
	RequiredLevel skills.Level `json:"requiredLevel"`
	NiceToHave    bool         `json:"niceToHave"`
}

// SkillGap describes one required skill the candidate does not fully meet.
type SkillGap struct {
	Name          string       `json:"name"`
	RequiredLevel skills.Level `json:"requiredLevel"`
	CurrentLevel  skills.Level `json:"currentLevel"`
	Gap           int          `json:"gap"`
	NiceToHave    bool         `json:"niceToHave,omitempty"`
}

// Result is the outcome of reconciling one CV against one position.
type Result struct {
	// MatchScore is the percentage of hard requirements met, nil when the
	// position has no hard requirements at all.
	MatchScore *int       `json:"matchScore"`
	Gaps       []SkillGap `json:"gaps"`
	MetCount   int        `json:"metCount"`
	TotalCount int        `json:"totalCount"`
}

// Reconcile compares extracted skills to requirements. Matching is
// case-insensitive on the exact skill name; a requirement is met when the
// extracted level is at or above the required level. Nice-to-have
// requirements never affect the score but still produce gap entries.
func Reconcile(extracted []skills.ExtractedSkill, requirements []Requirement) Result {
	byName := make(map[string]skills.Level, len(extracted))
	for _, s := range extracted {
		key := normalizeName(s.Name)
		if key == "" {
			continue
		}
		// Duplicate names keep the highest level claimed.
		if cur, ok := byName[key]; !ok || s.Level > cur {
			byName[key] = s.Level
		}
	}

	var (
		met   int
		total int
		gaps  []SkillGap
	)
	for _, req := range requirements {
		key := normalizeName(req.Name)
		if key == "" {
			continue
		}
		current := byName[key]

		if !req.NiceToHave {
			total++
			if current >= req.RequiredLevel {
				met++
				continue
			}
		} else if current >= req.RequiredLevel {
			continue
		}

		gaps = append(gaps, SkillGap{
			Name:          req.Name,
			RequiredLevel: req.RequiredLevel,
			CurrentLevel:  current,
			Gap:           int(req.RequiredLevel - current),
			NiceToHave:    req.NiceToHave,
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Gap != gaps[j].Gap {
			return gaps[i].Gap > gaps[j].Gap
		}
		return gaps[i].Name < gaps[j].Name
	})

	res := Result{Gaps: gaps, MetCount: met, TotalCount: total}
	if total > 0 {
		score := int(math.Round(100 * float64(met) / float64(total)))
		res.MatchScore = &score
	}
	return res
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
