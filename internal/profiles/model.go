// Package profiles stores the per-employee skills profile produced by a
// completed analysis. One row per employee; a new analysis replaces it.
package profiles

import (
	"errors"
	"time"

	"skillgap-backend/internal/gap"
	"skillgap-backend/internal/skills"
)

// ErrNotFound indicates no profile exists for the employee.
var ErrNotFound = errors.New("skills profile not found")

// Profile is the durable outcome of the latest completed analysis for an
// employee.
type Profile struct {
	EmployeeID      string                  `json:"employeeId"`
	ExtractedSkills []skills.ExtractedSkill `json:"extractedSkills"`
	// MatchScore is nil when the position had no hard requirements.
	MatchScore    *int           `json:"matchScore"`
	SkillGaps     []gap.SkillGap `json:"skillGaps"`
	Summary       string         `json:"summary,omitempty"`
	FitAssessment string         `json:"fitAssessment,omitempty"`
	AnalyzedAt    time.Time      `json:"analyzedAt"`
}

// LegacySkill is one skill on the wider platform's 0-3
// None/Learning/Using/Expert scale.
type LegacySkill struct {
	Name  string             `json:"name"`
	Level skills.LegacyLevel `json:"level"`
}

// LegacySkills renders the extracted skills on the legacy scale. Consumers
// syncing profiles into the platform skills table read this representation.
func (p Profile) LegacySkills() []LegacySkill {
	out := make([]LegacySkill, 0, len(p.ExtractedSkills))
	for _, s := range p.ExtractedSkills {
		out = append(out, LegacySkill{Name: s.Name, Level: s.Level.Legacy()})
	}
	return out
}
