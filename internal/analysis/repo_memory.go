package analysis

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores analysis requests in memory and is safe for concurrent
// use. It enforces the same state machine as the Postgres repo.
type MemoryRepo struct {
	mu         sync.RWMutex
	byID       map[string]Request
	byEmployee map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:       make(map[string]Request),
		byEmployee: make(map[string][]string),
	}
}

// Create stores the request.
func (r *MemoryRepo) Create(ctx context.Context, request Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[request.ID] = request
	r.byEmployee[request.EmployeeID] = append(r.byEmployee[request.EmployeeID], request.ID)
	return nil
}

// GetByID returns a request by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, requestID string) (Request, error) {
	if err := ctx.Err(); err != nil {
		return Request{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.byID[requestID]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

// GetActiveForEmployee returns the newest non-terminal request.
func (r *MemoryRepo) GetActiveForEmployee(ctx context.Context, employeeID string) (Request, error) {
	if err := ctx.Err(); err != nil {
		return Request{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best  Request
		found bool
	)
	for _, id := range r.byEmployee[employeeID] {
		req := r.byID[id]
		if Terminal(req.Status) {
			continue
		}
		if !found || req.CreatedAt.After(best.CreatedAt) {
			best = req
			found = true
		}
	}
	if !found {
		return Request{}, ErrNotFound
	}
	return best, nil
}

// UpdateStatus advances the request through the state machine.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, requestID, status string, upd StatusUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[requestID]
	if !ok {
		return ErrNotFound
	}
	if Terminal(req.Status) {
		return ErrAlreadyTerminal
	}
	if !CanTransition(req.Status, status) {
		return ErrInvalidTransition
	}

	req.Status = status
	req.ErrorCode = upd.ErrorCode
	req.ErrorMessage = upd.ErrorMessage
	if upd.StartedAt != nil {
		req.StartedAt = upd.StartedAt
	}
	if upd.CompletedAt != nil {
		req.CompletedAt = upd.CompletedAt
	}
	req.UpdatedAt = time.Now().UTC()
	r.byID[requestID] = req
	return nil
}

// ListByEmployee returns requests for an employee, newest first.
func (r *MemoryRepo) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byEmployee[employeeID]
	out := make([]Request, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Request{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// ListStale returns non-terminal requests untouched since the cutoff.
func (r *MemoryRepo) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Request
	for _, req := range r.byID {
		if Terminal(req.Status) || req.UpdatedAt.After(cutoff) {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)

// MemoryMetricsRepo is an in-memory append-only metrics sink.
type MemoryMetricsRepo struct {
	mu   sync.Mutex
	runs []RunMetrics
}

// NewMemoryMetricsRepo constructs a MemoryMetricsRepo.
func NewMemoryMetricsRepo() *MemoryMetricsRepo {
	return &MemoryMetricsRepo{}
}

// Record appends one run's metrics.
func (r *MemoryMetricsRepo) Record(ctx context.Context, m RunMetrics) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, m)
	return nil
}

// Runs returns a copy of everything recorded so far.
func (r *MemoryMetricsRepo) Runs() []RunMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RunMetrics(nil), r.runs...)
}

var _ MetricsRepo = (*MemoryMetricsRepo)(nil)
