// Package analysis orchestrates the CV-to-skills-gap pipeline: document
// extraction, model skill extraction, gap reconciliation and persistence of
// both the request's lifecycle and the resulting skills profile.
package analysis

import "time"

const (
	StatusPending    = "pending"
	StatusExtracting = "extracting"
	StatusAnalyzing  = "analyzing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// SourceInline marks a request whose FilePath holds the document itself as
// a base64 payload instead of an object store key.
const SourceInline = "inline"

// Request is one analysis job and its lifecycle state.
type Request struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	FilePath     string     `json:"filePath"`
	Source       string     `json:"source,omitempty"`
	Status       string     `json:"status"`
	ErrorCode    string     `json:"errorCode,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Terminal reports whether the status admits no further transitions.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// validTransitions encodes the request state machine. Failed is reachable
// from any non-terminal state and is handled separately.
var validTransitions = map[string][]string{
	StatusPending:    {StatusExtracting},
	StatusExtracting: {StatusAnalyzing},
	StatusAnalyzing:  {StatusCompleted},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to string) bool {
	if Terminal(from) {
		return false
	}
	if to == StatusFailed {
		return true
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
