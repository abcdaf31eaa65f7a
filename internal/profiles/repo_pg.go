package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"skillgap-backend/internal/gap"
	"skillgap-backend/internal/skills"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Upsert replaces the employee's profile row. The ON CONFLICT clause makes
// concurrent completions last-write-wins without failing either writer.
func (r *PGRepo) Upsert(ctx context.Context, profile Profile) error {
	extracted, err := marshalJSONB(profile.ExtractedSkills)
	if err != nil {
		return err
	}
	gaps, err := marshalJSONB(profile.SkillGaps)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO skills_profiles (
	employee_id, extracted_skills, match_score_percent, skill_gaps, summary, fit_assessment, analyzed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (employee_id) DO UPDATE SET
	extracted_skills = EXCLUDED.extracted_skills,
	match_score_percent = EXCLUDED.match_score_percent,
	skill_gaps = EXCLUDED.skill_gaps,
	summary = EXCLUDED.summary,
	fit_assessment = EXCLUDED.fit_assessment,
	analyzed_at = EXCLUDED.analyzed_at`
	_, err = r.DB.ExecContext(ctx, query,
		profile.EmployeeID,
		extracted,
		nullableInt(profile.MatchScore),
		gaps,
		profile.Summary,
		profile.FitAssessment,
		profile.AnalyzedAt,
	)
	return err
}

// GetByEmployee returns the profile for an employee.
func (r *PGRepo) GetByEmployee(ctx context.Context, employeeID string) (Profile, error) {
	const query = `
SELECT employee_id, extracted_skills, match_score_percent, skill_gaps,
       COALESCE(summary, ''), COALESCE(fit_assessment, ''), analyzed_at
FROM skills_profiles
WHERE employee_id = $1
LIMIT 1`
	var (
		p         Profile
		extracted []byte
		gapsRaw   []byte
		score     sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx, query, employeeID).Scan(
		&p.EmployeeID, &extracted, &score, &gapsRaw, &p.Summary, &p.FitAssessment, &p.AnalyzedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}

	if score.Valid {
		v := int(score.Int64)
		p.MatchScore = &v
	}
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &p.ExtractedSkills); err != nil {
			return Profile{}, err
		}
	}
	if len(gapsRaw) > 0 {
		if err := json.Unmarshal(gapsRaw, &p.SkillGaps); err != nil {
			return Profile{}, err
		}
	}
	return p, nil
}

func marshalJSONB(v any) ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	switch t := v.(type) {
	case []skills.ExtractedSkill:
		if t == nil {
			return []byte("[]"), nil
		}
	case []gap.SkillGap:
		if t == nil {
			return []byte("[]"), nil
		}
	}
	return json.Marshal(v)
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

var _ Repo = (*PGRepo)(nil)
