package skills

import "fmt"

// Level is the canonical 1-5 proficiency ordinal used throughout the
// analysis pipeline (the scale the model answers in).
type Level int

const (
	LevelBeginner     Level = 1
	LevelAdvBeginner  Level = 2
	LevelIntermediate Level = 3
	LevelAdvanced     Level = 4
	LevelExpert       Level = 5

	MinLevel = LevelBeginner
	MaxLevel = LevelExpert
)

// LegacyLevel is the 0-3 None/Learning/Using/Expert scale the wider platform
// stores validated skills on. It exists only at the export boundary.
type LegacyLevel int

const (
	LegacyNone     LegacyLevel = 0
	LegacyLearning LegacyLevel = 1
	LegacyUsing    LegacyLevel = 2
	LegacyExpert   LegacyLevel = 3
)

// Valid reports whether the level is on the canonical scale.
func (l Level) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// String returns the human label for the canonical level.
func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "Beginner"
	case LevelAdvBeginner:
		return "Advanced Beginner"
	case LevelIntermediate:
		return "Intermediate"
	case LevelAdvanced:
		return "Advanced"
	case LevelExpert:
		return "Expert"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Legacy maps a canonical level onto the legacy 0-3 scale.
func (l Level) Legacy() LegacyLevel {
	switch {
	case l <= 0:
		return LegacyNone
	case l <= LevelAdvBeginner:
		return LegacyLearning
	case l <= LevelAdvanced:
		return LegacyUsing
	default:
		return LegacyExpert
	}
}

// FromLegacy maps a legacy 0-3 level onto the canonical scale. None maps to
// zero, which is below MinLevel: absence of a skill is not a proficiency.
func FromLegacy(l LegacyLevel) Level {
	switch l {
	case LegacyLearning:
		return LevelAdvBeginner
	case LegacyUsing:
		return LevelAdvanced
	case LegacyExpert:
		return LevelExpert
	default:
		return 0
	}
}

// ExtractedSkill is one skill the model attributed to a CV.
type ExtractedSkill struct {
	Name            string   `json:"name"`
	Level           Level    `json:"level"`
	YearsExperience *float64 `json:"yearsExperience,omitempty"`
	Evidence        string   `json:"evidence,omitempty"`
}
