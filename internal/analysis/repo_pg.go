package analysis

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis request.
func (r *PGRepo) Create(ctx context.Context, request Request) error {
	const query = `
INSERT INTO analysis_requests (
	id, employee_id, file_path, source, status, created_at, updated_at
)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		request.ID,
		request.EmployeeID,
		request.FilePath,
		request.Source,
		request.Status,
		request.CreatedAt,
		request.UpdatedAt,
	)
	return err
}

const requestColumns = `
id, employee_id, file_path, COALESCE(source, ''), status,
COALESCE(error_code, ''), COALESCE(error_message, ''),
started_at, completed_at, created_at, updated_at`

// GetByID returns a request by its ID.
func (r *PGRepo) GetByID(ctx context.Context, requestID string) (Request, error) {
	query := `SELECT ` + requestColumns + `
FROM analysis_requests
WHERE id = $1
LIMIT 1`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, requestID))
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

// GetActiveForEmployee returns the newest non-terminal request.
func (r *PGRepo) GetActiveForEmployee(ctx context.Context, employeeID string) (Request, error) {
	query := `SELECT ` + requestColumns + `
FROM analysis_requests
WHERE employee_id = $1 AND status NOT IN ($2, $3)
ORDER BY created_at DESC
LIMIT 1`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, employeeID, StatusCompleted, StatusFailed))
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

// UpdateStatus advances the request through the state machine inside a
// transaction: the current row is locked, the transition validated, then
// written. Illegal transitions leave the row untouched.
func (r *PGRepo) UpdateStatus(ctx context.Context, requestID, status string, upd StatusUpdate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM analysis_requests WHERE id = $1 FOR UPDATE`, requestID,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if Terminal(current) {
		return ErrAlreadyTerminal
	}
	if !CanTransition(current, status) {
		return ErrInvalidTransition
	}

	const query = `
UPDATE analysis_requests SET
	status = $2,
	error_code = NULLIF($3, ''),
	error_message = NULLIF($4, ''),
	started_at = COALESCE($5, started_at),
	completed_at = COALESCE($6, completed_at),
	updated_at = $7
WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query,
		requestID,
		status,
		upd.ErrorCode,
		upd.ErrorMessage,
		upd.StartedAt,
		upd.CompletedAt,
		time.Now().UTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ListByEmployee returns requests for an employee, newest first.
func (r *PGRepo) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]Request, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + requestColumns + `
FROM analysis_requests
WHERE employee_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

// ListStale returns non-terminal requests untouched since the cutoff.
func (r *PGRepo) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]Request, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT ` + requestColumns + `
FROM analysis_requests
WHERE status NOT IN ($1, $2) AND updated_at <= $3
ORDER BY updated_at ASC
LIMIT $4`
	rows, err := r.DB.QueryContext(ctx, query, StatusCompleted, StatusFailed, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (Request, error) {
	var (
		req         Request
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.FilePath, &req.Source, &req.Status,
		&req.ErrorCode, &req.ErrorMessage,
		&startedAt, &completedAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return Request{}, err
	}
	if startedAt.Valid {
		t := startedAt.Time
		req.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		req.CompletedAt = &t
	}
	return req, nil
}

func scanRequests(rows *sql.Rows) ([]Request, error) {
	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)

// PGMetricsRepo is the append-only Postgres metrics sink.
type PGMetricsRepo struct {
	DB *sql.DB
}

// Record appends one run's metrics.
func (r *PGMetricsRepo) Record(ctx context.Context, m RunMetrics) error {
	const query = `
INSERT INTO analysis_metrics (
	request_id, employee_id, status, error_code, duration_ms, cv_chars,
	skills_extracted, match_score, recorded_at
)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		m.RequestID,
		m.EmployeeID,
		m.Status,
		m.ErrorCode,
		m.DurationMS,
		m.CVChars,
		nullableIntPtr(m.SkillsExtracted),
		nullableIntPtr(m.MatchScore),
		m.RecordedAt,
	)
	return err
}

func nullableIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

var _ MetricsRepo = (*PGMetricsRepo)(nil)
