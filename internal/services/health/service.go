// Package health exposes liveness and readiness checks.
package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service. DB may be nil when running on
// in-memory repositories.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status returns the liveness payload.
func (s *Service) Status() map[string]bool {
	return map[string]bool{"ok": true}
}

// Ready reports whether dependencies are reachable.
func (s *Service) Ready(ctx context.Context) map[string]any {
	out := map[string]any{"ok": true}
	if s.DB == nil {
		out["database"] = "memory"
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		out["ok"] = false
		out["database"] = "unreachable"
		return out
	}
	out["database"] = "ok"
	return out
}
