package positions

import (
	"context"
	"sync"

	"skillgap-backend/internal/gap"
)

// MemoryRepo stores positions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Position
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Position)}
}

// GetByID returns a position by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, positionID string) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[positionID]
	if !ok {
		return Position{}, ErrNotFound
	}
	// Copy the requirement slice so callers cannot mutate stored state.
	out := p
	out.Requirements = append([]gap.Requirement(nil), p.Requirements...)
	return out, nil
}

// Upsert inserts or replaces the position.
func (r *MemoryRepo) Upsert(ctx context.Context, position Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := position
	stored.Requirements = append([]gap.Requirement(nil), position.Requirements...)
	r.byID[position.ID] = stored
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
