package profiles

import (
	"context"
	"sync"
)

// MemoryRepo stores profiles in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu         sync.RWMutex
	byEmployee map[string]Profile
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byEmployee: make(map[string]Profile)}
}

// Upsert replaces the employee's profile.
func (r *MemoryRepo) Upsert(ctx context.Context, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmployee[profile.EmployeeID] = profile
	return nil
}

// GetByEmployee returns the profile for an employee.
func (r *MemoryRepo) GetByEmployee(ctx context.Context, employeeID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byEmployee[employeeID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

var _ Repo = (*MemoryRepo)(nil)
