package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"skillgap-backend/internal/gap"
	"skillgap-backend/internal/skills"
)

func TestPGRepoUpsertUsesOnConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	score := 75
	profile := Profile{
		EmployeeID: "emp-1",
		ExtractedSkills: []skills.ExtractedSkill{
			{Name: "Go", Level: 4},
		},
		MatchScore: &score,
		SkillGaps: []gap.SkillGap{
			{Name: "SQL", RequiredLevel: 4, CurrentLevel: 2, Gap: 2},
		},
		Summary:       "strong backend profile",
		FitAssessment: "good fit",
		AnalyzedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO skills_profiles").
		WithArgs(
			profile.EmployeeID,
			sqlmock.AnyArg(), // extracted_skills jsonb
			score,
			sqlmock.AnyArg(), // skill_gaps jsonb
			profile.Summary,
			profile.FitAssessment,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Upsert(context.Background(), profile); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpsertNilScorePersistsNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	profile := Profile{EmployeeID: "emp-2", AnalyzedAt: time.Now().UTC()}

	mock.ExpectExec("INSERT INTO skills_profiles").
		WithArgs(
			profile.EmployeeID,
			sqlmock.AnyArg(),
			nil,
			sqlmock.AnyArg(),
			"",
			"",
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Upsert(context.Background(), profile); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByEmployeeNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT employee_id, extracted_skills").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"employee_id"}))

	_, err = repo.GetByEmployee(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByEmployeeDecodesJSONB(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	analyzedAt := time.Now().UTC().Truncate(time.Second)
	rows := sqlmock.NewRows([]string{
		"employee_id", "extracted_skills", "match_score_percent", "skill_gaps", "summary", "fit_assessment", "analyzed_at",
	}).AddRow(
		"emp-1",
		[]byte(`[{"name":"Go","level":4}]`),
		80,
		[]byte(`[{"name":"SQL","requiredLevel":4,"currentLevel":2,"gap":2}]`),
		"summary",
		"fit",
		analyzedAt,
	)
	mock.ExpectQuery("SELECT employee_id, extracted_skills").
		WithArgs("emp-1").
		WillReturnRows(rows)

	p, err := repo.GetByEmployee(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("GetByEmployee: %v", err)
	}
	if p.MatchScore == nil || *p.MatchScore != 80 {
		t.Fatalf("expected score 80, got %v", p.MatchScore)
	}
	if len(p.ExtractedSkills) != 1 || p.ExtractedSkills[0].Name != "Go" {
		t.Fatalf("unexpected skills: %+v", p.ExtractedSkills)
	}
	if len(p.SkillGaps) != 1 || p.SkillGaps[0].Gap != 2 {
		t.Fatalf("unexpected gaps: %+v", p.SkillGaps)
	}
}

func TestMemoryRepoLastWriteWins(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	first := Profile{EmployeeID: "emp-1", Summary: "first"}
	second := Profile{EmployeeID: "emp-1", Summary: "second"}

	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert first: %v", err)
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert second: %v", err)
	}

	got, err := repo.GetByEmployee(ctx, "emp-1")
	if err != nil {
		t.Fatalf("GetByEmployee: %v", err)
	}
	if got.Summary != "second" {
		t.Fatalf("expected last write to win, got %q", got.Summary)
	}
}
