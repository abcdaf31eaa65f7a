package employees

import "context"

// Repo defines persistence operations for employees.
type Repo interface {
	GetByID(ctx context.Context, employeeID string) (Employee, error)
	Upsert(ctx context.Context, employee Employee) error
}
