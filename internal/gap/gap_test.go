package gap

import (
	"testing"

	"skillgap-backend/internal/skills"
)

func TestReconcileHalfMet(t *testing.T) {
	extracted := []skills.ExtractedSkill{
		{Name: "Python", Level: 4},
		{Name: "SQL", Level: 2},
	}
	reqs := []Requirement{
		{Name: "Python", RequiredLevel: 3},
		{Name: "SQL", RequiredLevel: 4},
	}

	res := Reconcile(extracted, reqs)

	if res.MatchScore == nil || *res.MatchScore != 50 {
		t.Fatalf("expected score 50, got %v", res.MatchScore)
	}
	if len(res.Gaps) != 1 {
		t.Fatalf("expected one gap, got %d", len(res.Gaps))
	}
	g := res.Gaps[0]
	if g.Name != "SQL" || g.CurrentLevel != 2 || g.RequiredLevel != 4 || g.Gap != 2 {
		t.Fatalf("unexpected gap: %+v", g)
	}
}

func TestReconcileNoRequirementsScoreIsNil(t *testing.T) {
	res := Reconcile([]skills.ExtractedSkill{{Name: "Go", Level: 5}}, nil)
	if res.MatchScore != nil {
		t.Fatalf("expected nil score, got %d", *res.MatchScore)
	}
	if len(res.Gaps) != 0 {
		t.Fatalf("expected no gaps, got %v", res.Gaps)
	}
}

func TestReconcileOnlyNiceToHaveScoreIsNil(t *testing.T) {
	reqs := []Requirement{{Name: "Terraform", RequiredLevel: 3, NiceToHave: true}}
	res := Reconcile(nil, reqs)
	if res.MatchScore != nil {
		t.Fatalf("nice-to-have must not create a score, got %d", *res.MatchScore)
	}
	if len(res.Gaps) != 1 || !res.Gaps[0].NiceToHave {
		t.Fatalf("expected the nice-to-have gap reported, got %+v", res.Gaps)
	}
}

func TestReconcileCaseInsensitiveMatch(t *testing.T) {
	extracted := []skills.ExtractedSkill{{Name: "  postgresql ", Level: 4}}
	reqs := []Requirement{{Name: "PostgreSQL", RequiredLevel: 3}}

	res := Reconcile(extracted, reqs)
	if res.MatchScore == nil || *res.MatchScore != 100 {
		t.Fatalf("expected 100, got %v", res.MatchScore)
	}
}

func TestReconcileUnmatchedSkillGapIsFullRequirement(t *testing.T) {
	reqs := []Requirement{{Name: "Kafka", RequiredLevel: 4}}
	res := Reconcile(nil, reqs)

	if res.MatchScore == nil || *res.MatchScore != 0 {
		t.Fatalf("expected 0, got %v", res.MatchScore)
	}
	g := res.Gaps[0]
	if g.CurrentLevel != 0 || g.Gap != 4 {
		t.Fatalf("unexpected gap for unmatched skill: %+v", g)
	}
}

func TestReconcileDuplicateExtractionKeepsHighestLevel(t *testing.T) {
	extracted := []skills.ExtractedSkill{
		{Name: "Go", Level: 2},
		{Name: "go", Level: 5},
	}
	reqs := []Requirement{{Name: "Go", RequiredLevel: 4}}

	res := Reconcile(extracted, reqs)
	if res.MatchScore == nil || *res.MatchScore != 100 {
		t.Fatalf("expected highest duplicate level to win, got %v", res.MatchScore)
	}
}

func TestReconcileScoreRounds(t *testing.T) {
	extracted := []skills.ExtractedSkill{{Name: "A", Level: 5}}
	reqs := []Requirement{
		{Name: "A", RequiredLevel: 1},
		{Name: "B", RequiredLevel: 1},
		{Name: "C", RequiredLevel: 1},
	}
	res := Reconcile(extracted, reqs)
	// 1/3 rounds to 33
	if res.MatchScore == nil || *res.MatchScore != 33 {
		t.Fatalf("expected 33, got %v", res.MatchScore)
	}
}

func TestReconcileGapsSortedBySeverity(t *testing.T) {
	reqs := []Requirement{
		{Name: "Small", RequiredLevel: 1},
		{Name: "Big", RequiredLevel: 5},
	}
	res := Reconcile(nil, reqs)
	if len(res.Gaps) != 2 || res.Gaps[0].Name != "Big" {
		t.Fatalf("expected largest gap first, got %+v", res.Gaps)
	}
}

func TestReconcileIsPure(t *testing.T) {
	extracted := []skills.ExtractedSkill{{Name: "Python", Level: 2}}
	reqs := []Requirement{{Name: "Python", RequiredLevel: 4}}

	first := Reconcile(extracted, reqs)
	second := Reconcile(extracted, reqs)

	if *first.MatchScore != *second.MatchScore || len(first.Gaps) != len(second.Gaps) {
		t.Fatal("identical inputs must produce identical results")
	}
	if extracted[0].Level != 2 || reqs[0].RequiredLevel != 4 {
		t.Fatal("inputs must not be mutated")
	}
}
