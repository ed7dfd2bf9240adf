package scoring

import (
	"math"
	"testing"
)

func TestNormalizeWorkedScenario(t *testing.T) {
	t.Parallel()

	components := Components{RoleFit: 8, SkillOverlap: 6, SeniorityMatch: 5}

	if raw := Raw(components, WeightsFor(GoalPeerNetworking)); raw != 79 {
		t.Fatalf("expected raw score 79, got %v", raw)
	}

	score, grade := Normalize(components, GoalPeerNetworking)
	if score != 329 {
		t.Fatalf("expected score 329, got %d", score)
	}
	if grade != "B" {
		t.Fatalf("expected grade B for 329, got %q", grade)
	}
}

func TestNormalizeUnknownGoalFallsBackToPeerNetworking(t *testing.T) {
	t.Parallel()

	components := Components{RoleFit: 8, SkillOverlap: 6, SeniorityMatch: 5}

	wantScore, wantGrade := Normalize(components, GoalPeerNetworking)
	for _, goal := range []Goal{"Unknown Goal", "", "peer networking"} {
		score, grade := Normalize(components, goal)
		if score != wantScore || grade != wantGrade {
			t.Fatalf("goal %q: expected %d/%s, got %d/%s", goal, wantScore, wantGrade, score, grade)
		}
	}
}

func TestNormalizeGoalWeights(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goal  Goal
		c     Components
		score int
	}{
		{goal: GoalTargetAudience, c: Components{RoleFit: 10, SkillOverlap: 0, SeniorityMatch: 0}, score: 250},
		{goal: GoalIndustryLeaders, c: Components{RoleFit: 0, SkillOverlap: 0, SeniorityMatch: 10}, score: 292},
		{goal: GoalPeerNetworking, c: Components{RoleFit: 10, SkillOverlap: 10, SeniorityMatch: 10}, score: 500},
		{goal: GoalIndustryLeaders, c: Components{}, score: 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.goal), func(t *testing.T) {
			if score, _ := Normalize(tt.c, tt.goal); score != tt.score {
				t.Fatalf("expected %d, got %d", tt.score, score)
			}
		})
	}
}

func TestNormalizeBounds(t *testing.T) {
	t.Parallel()

	goals := append(Goals(), "Unknown Goal")
	for _, goal := range goals {
		for rf := 0.0; rf <= MaxComponent; rf++ {
			for so := 0.0; so <= MaxComponent; so++ {
				for sm := 0.0; sm <= MaxComponent; sm++ {
					score, _ := Normalize(Components{RoleFit: rf, SkillOverlap: so, SeniorityMatch: sm}, goal)
					if score < 0 || score > MaxScore {
						t.Fatalf("goal %q (%v,%v,%v): score %d out of bounds", goal, rf, so, sm, score)
					}
				}
			}
		}
	}
}

func TestNormalizeClampsOutOfRangeComponents(t *testing.T) {
	t.Parallel()

	if score, grade := Normalize(Components{RoleFit: 50, SkillOverlap: 50, SeniorityMatch: 50}, GoalPeerNetworking); score != MaxScore || grade != "A+" {
		t.Fatalf("expected clamp to 500/A+, got %d/%s", score, grade)
	}
	if score, grade := Normalize(Components{RoleFit: -5}, GoalPeerNetworking); score != 0 || grade != "F" {
		t.Fatalf("expected clamp to 0/F, got %d/%s", score, grade)
	}
	if score, _ := Normalize(Components{RoleFit: math.NaN()}, GoalPeerNetworking); score != 0 {
		t.Fatalf("expected NaN component to score 0, got %d", score)
	}
}

func TestNormalizeMonotonic(t *testing.T) {
	t.Parallel()

	bump := []func(c *Components){
		func(c *Components) { c.RoleFit++ },
		func(c *Components) { c.SkillOverlap++ },
		func(c *Components) { c.SeniorityMatch++ },
	}

	for _, goal := range Goals() {
		for i, inc := range bump {
			for base := 0.0; base < MaxComponent; base++ {
				c := Components{RoleFit: base, SkillOverlap: 10 - base, SeniorityMatch: base / 2}
				before, _ := Normalize(c, goal)
				inc(&c)
				after, _ := Normalize(c, goal)
				if after < before {
					t.Fatalf("goal %q component %d base %v: score decreased %d -> %d", goal, i, base, before, after)
				}
			}
		}
	}
}

func TestGradeBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		grade string
	}{
		{500, "A+"},
		{450, "A+"},
		{449, "A"},
		{400, "A"},
		{399, "B+"},
		{350, "B+"},
		{300, "B"},
		{299, "C+"},
		{250, "C+"},
		{200, "C"},
		{150, "D"},
		{149, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		if got := Grade(tt.score); got != tt.grade {
			t.Fatalf("Grade(%d) = %q, want %q", tt.score, got, tt.grade)
		}
	}
}

func TestParseGoalAndNext(t *testing.T) {
	t.Parallel()

	goal, ok := ParseGoal("  industry leaders ")
	if !ok || goal != GoalIndustryLeaders {
		t.Fatalf("expected Industry Leaders, got %q (%v)", goal, ok)
	}
	if _, ok := ParseGoal("Sales"); ok {
		t.Fatalf("expected unknown goal to be rejected")
	}

	if next := GoalIndustryLeaders.Next(); next != GoalPeerNetworking {
		t.Fatalf("expected wrap-around to Peer Networking, got %q", next)
	}
	if next := Goal("bogus").Next(); next != GoalPeerNetworking {
		t.Fatalf("expected unknown goal to restart cycle, got %q", next)
	}
}

func TestGradeColor(t *testing.T) {
	t.Parallel()

	if GradeColor("A+") != GradeColor("A") {
		t.Fatalf("expected A family to share a color")
	}
	if GradeColor("F") == GradeColor("A") {
		t.Fatalf("expected F and A to differ")
	}
}
