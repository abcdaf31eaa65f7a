package employees

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// GetByID returns an employee by its ID.
func (r *PGRepo) GetByID(ctx context.Context, employeeID string) (Employee, error) {
	const query = `
SELECT id, full_name, COALESCE(position_id, '')
FROM employees
WHERE id = $1
LIMIT 1`
	var e Employee
	err := r.DB.QueryRowContext(ctx, query, employeeID).Scan(&e.ID, &e.FullName, &e.PositionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

// Upsert inserts or replaces the employee row.
func (r *PGRepo) Upsert(ctx context.Context, employee Employee) error {
	const query = `
INSERT INTO employees (id, full_name, position_id)
VALUES ($1, $2, NULLIF($3, ''))
ON CONFLICT (id) DO UPDATE SET
	full_name = EXCLUDED.full_name,
	position_id = EXCLUDED.position_id`
	_, err := r.DB.ExecContext(ctx, query, employee.ID, employee.FullName, employee.PositionID)
	return err
}

var _ Repo = (*PGRepo)(nil)
