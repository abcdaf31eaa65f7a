// Package positions holds job positions and their skill requirements.
package positions

import (
	"errors"

	"skillgap-backend/internal/gap"
)

// ErrNotFound indicates the position does not exist.
var ErrNotFound = errors.New("position not found")

// Position is a role with a set of required skills.
type Position struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Requirements []gap.Requirement `json:"requirements"`
}
