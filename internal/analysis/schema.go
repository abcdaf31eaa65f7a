package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"skillgap-backend/internal/skills"
)

// ModelResult is the shape the model must answer with:
// {
//   "skills": [{"name": "...", "level": 1-5, "yearsExperience": 3.5, "evidence": "..."}],
//   "summary": "...",
//   "fitAssessment": "..."
// }
type ModelResult struct {
	Skills        []skills.ExtractedSkill `json:"skills"`
	Summary       string                  `json:"summary"`
	FitAssessment string                  `json:"fitAssessment"`
}

// parseModelResult decodes and validates the raw model answer. Any failure
// is a schemaError so the classifier reports malformed_model_response.
func parseModelResult(raw json.RawMessage) (ModelResult, error) {
	var result ModelResult
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&result); err != nil {
		// Retry leniently: unknown fields alone are not worth failing a run.
		if err2 := json.Unmarshal(raw, &result); err2 != nil {
			return ModelResult{}, newSchemaError(fmt.Sprintf("model response is not valid JSON: %v", err2))
		}
	}
	if err := result.Validate(); err != nil {
		return ModelResult{}, err
	}
	return result, nil
}

// Validate checks the structural invariants of a model answer.
func (r ModelResult) Validate() error {
	if r.Skills == nil {
		return newSchemaError("model response missing skills array")
	}
	for i, s := range r.Skills {
		if strings.TrimSpace(s.Name) == "" {
			return newSchemaError(fmt.Sprintf("skills[%d]: name is empty", i))
		}
		if !s.Level.Valid() {
			return newSchemaError(fmt.Sprintf("skills[%d] %q: level %d out of range 1-5", i, s.Name, s.Level))
		}
		if s.YearsExperience != nil && *s.YearsExperience < 0 {
			return newSchemaError(fmt.Sprintf("skills[%d] %q: negative yearsExperience", i, s.Name))
		}
	}
	return nil
}
