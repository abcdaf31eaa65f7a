// Package employees holds the employee directory the analysis pipeline
// resolves positions through.
package employees

import "errors"

// ErrNotFound indicates the employee does not exist.
var ErrNotFound = errors.New("employee not found")

// Employee is a member of the organization whose CV can be analyzed.
type Employee struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	PositionID string `json:"positionId,omitempty"`
}
