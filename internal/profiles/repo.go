package profiles

import "context"

// Repo defines persistence operations for skills profiles.
type Repo interface {
	// Upsert replaces the employee's profile. Last writer wins.
	Upsert(ctx context.Context, profile Profile) error
	GetByEmployee(ctx context.Context, employeeID string) (Profile, error)
}
