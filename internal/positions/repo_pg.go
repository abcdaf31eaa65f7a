package positions

import (
	"context"
	"database/sql"
	"errors"

	"skillgap-backend/internal/gap"
	"skillgap-backend/internal/skills"
)

// PGRepo implements Repo using Postgres. Requirements live in the
// position_skills table keyed by (position_id, skill_name).
type PGRepo struct {
	DB *sql.DB
}

// GetByID returns a position with its requirements.
func (r *PGRepo) GetByID(ctx context.Context, positionID string) (Position, error) {
	const posQuery = `
SELECT id, title
FROM positions
WHERE id = $1
LIMIT 1`
	var p Position
	err := r.DB.QueryRowContext(ctx, posQuery, positionID).Scan(&p.ID, &p.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return Position{}, ErrNotFound
	}
	if err != nil {
		return Position{}, err
	}

	const skillQuery = `
SELECT skill_name, required_level, nice_to_have
FROM position_skills
WHERE position_id = $1
ORDER BY skill_name`
	rows, err := r.DB.QueryContext(ctx, skillQuery, positionID)
	if err != nil {
		return Position{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name  string
			level int
			nice  bool
		)
		if err := rows.Scan(&name, &level, &nice); err != nil {
			return Position{}, err
		}
		p.Requirements = append(p.Requirements, gap.Requirement{
			Name:          name,
			RequiredLevel: skills.Level(level),
			NiceToHave:    nice,
		})
	}
	if err := rows.Err(); err != nil {
		return Position{}, err
	}
	return p, nil
}

// Upsert replaces the position row and its full requirement set atomically.
func (r *PGRepo) Upsert(ctx context.Context, position Position) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const posQuery = `
INSERT INTO positions (id, title)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title`
	if _, err := tx.ExecContext(ctx, posQuery, position.ID, position.Title); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM position_skills WHERE position_id = $1`, position.ID); err != nil {
		return err
	}

	const skillQuery = `
INSERT INTO position_skills (position_id, skill_name, required_level, nice_to_have)
VALUES ($1, $2, $3, $4)`
	for _, req := range position.Requirements {
		if _, err := tx.ExecContext(ctx, skillQuery, position.ID, req.Name, int(req.RequiredLevel), req.NiceToHave); err != nil {
			return err
		}
	}

	return tx.Commit()
}

var _ Repo = (*PGRepo)(nil)
