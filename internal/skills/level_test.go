package skills

import "testing"

func TestLevelValid(t *testing.T) {
	for l := MinLevel; l <= MaxLevel; l++ {
		if !l.Valid() {
			t.Fatalf("level %d should be valid", l)
		}
	}
	for _, l := range []Level{0, -1, 6, 100} {
		if l.Valid() {
			t.Fatalf("level %d should be invalid", l)
		}
	}
}

func TestLegacyMapping(t *testing.T) {
	cases := []struct {
		in   Level
		want LegacyLevel
	}{
		{LevelBeginner, LegacyLearning},
		{LevelAdvBeginner, LegacyLearning},
		{LevelIntermediate, LegacyUsing},
		{LevelAdvanced, LegacyUsing},
		{LevelExpert, LegacyExpert},
		{0, LegacyNone},
	}
	for _, tc := range cases {
		if got := tc.in.Legacy(); got != tc.want {
			t.Fatalf("Legacy(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFromLegacy(t *testing.T) {
	cases := []struct {
		in   LegacyLevel
		want Level
	}{
		{LegacyNone, 0},
		{LegacyLearning, LevelAdvBeginner},
		{LegacyUsing, LevelAdvanced},
		{LegacyExpert, LevelExpert},
	}
	for _, tc := range cases {
		if got := FromLegacy(tc.in); got != tc.want {
			t.Fatalf("FromLegacy(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFromLegacyRoundTripStaysOnScale(t *testing.T) {
	for _, l := range []LegacyLevel{LegacyLearning, LegacyUsing, LegacyExpert} {
		if got := FromLegacy(l).Legacy(); got != l {
			t.Fatalf("round trip of legacy %d gave %d", l, got)
		}
	}
}

func TestLevelString(t *testing.T) {
	if got := LevelExpert.String(); got != "Expert" {
		t.Fatalf("expected Expert, got %q", got)
	}
	if got := Level(9).String(); got != "Level(9)" {
		t.Fatalf("expected fallback label, got %q", got)
	}
}
