package analysis

import (
	"context"
	"time"
)

// Repo defines persistence operations for analysis requests.
type Repo interface {
	Create(ctx context.Context, request Request) error
	GetByID(ctx context.Context, requestID string) (Request, error)
	// GetActiveForEmployee returns the newest non-terminal request for the
	// employee, or ErrNotFound.
	GetActiveForEmployee(ctx context.Context, employeeID string) (Request, error)
	// UpdateStatus advances the request through the state machine. It must
	// reject transitions CanTransition forbids with ErrInvalidTransition and
	// refuse to touch terminal rows with ErrAlreadyTerminal.
	UpdateStatus(ctx context.Context, requestID, status string, upd StatusUpdate) error
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]Request, error)
	// ListStale returns non-terminal requests untouched since the cutoff,
	// used by the reaper to fail orphaned jobs.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]Request, error)
}

// StatusUpdate carries the optional fields written alongside a transition.
type StatusUpdate struct {
	ErrorCode    string
	ErrorMessage string
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// MetricsRepo is append-only storage of per-run outcome metrics.
type MetricsRepo interface {
	Record(ctx context.Context, m RunMetrics) error
}

// RunMetrics is one analysis run's outcome, recorded when it terminates.
type RunMetrics struct {
	RequestID       string
	EmployeeID      string
	Status          string
	ErrorCode       string
	DurationMS      int64
	CVChars         int
	SkillsExtracted *int
	MatchScore      *int
	RecordedAt      time.Time
}
