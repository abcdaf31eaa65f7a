package positions

import "context"

// Repo defines persistence operations for positions.
type Repo interface {
	GetByID(ctx context.Context, positionID string) (Position, error)
	Upsert(ctx context.Context, position Position) error
}
