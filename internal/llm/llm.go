// Package llm defines the model-client contract used by the analysis
// pipeline and the retry policy wrapped around it.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"skillgap-backend/internal/skills"
)

// RequiredSkill is one skill a position demands, passed to the model so it
// grades against the right scale.
type RequiredSkill struct {
	Name          string       `json:"name"`
	RequiredLevel skills.Level `json:"requiredLevel"`
}

// ExtractInput carries everything the model needs for one extraction call.
type ExtractInput struct {
	CVText           string
	PositionTitle    string
	RequiredSkills   []RequiredSkill
	NiceToHaveSkills []RequiredSkill
}

// Client is the model boundary. Implementations return the raw JSON body of
// the model's answer; schema validation happens in the analysis layer.
type Client interface {
	ExtractSkills(ctx context.Context, in ExtractInput) (json.RawMessage, error)
}

// StatusError is an upstream provider failure carrying the HTTP status the
// provider answered with. The retry policy keys off the code.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("llm provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("llm provider returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the failure is transient: rate limiting or a
// server-side error. Auth and other client errors are permanent.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
