package employees

import (
	"context"
	"sync"
)

// MemoryRepo stores employees in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Employee
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Employee)}
}

// GetByID returns an employee by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, employeeID string) (Employee, error) {
	if err := ctx.Err(); err != nil {
		return Employee{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[employeeID]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return e, nil
}

// Upsert inserts or replaces the employee.
func (r *MemoryRepo) Upsert(ctx context.Context, employee Employee) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[employee.ID] = employee
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
