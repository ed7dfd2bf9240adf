// Package scoring turns the multi-dimensional AI judgment into a bounded score and a letter grade.
package scoring

import (
	"math"
	"strings"
)

// Goal is the networking goal the user analyzes prospects for.
type Goal string

// Supported analysis goals.
const (
	GoalPeerNetworking  Goal = "Peer Networking"
	GoalTargetAudience  Goal = "Target Audience (Clients)"
	GoalIndustryLeaders Goal = "Industry Leaders"
)

// DefaultGoal is used for new settings.
const DefaultGoal = GoalTargetAudience

const (
	// MaxScore is the upper bound of a normalized score.
	MaxScore = 500
	// MaxComponent is the upper bound of every AI sub-score.
	MaxComponent = 10
)

// Components are the AI sub-scores, each expected in [0,10].
type Components struct {
	RoleFit        float64 `json:"role_fit" yaml:"role_fit"`
	SkillOverlap   float64 `json:"skill_overlap" yaml:"skill_overlap"`
	SeniorityMatch float64 `json:"seniority_match" yaml:"seniority_match"`
}

// Weights holds the per-goal multipliers and the raw maximum used for normalization.
type Weights struct {
	Role      float64
	Skill     float64
	Seniority float64
	MaxRaw    float64
}

// Goals lists every supported goal in display order.
func Goals() []Goal {
	return []Goal{GoalPeerNetworking, GoalTargetAudience, GoalIndustryLeaders}
}

// Valid reports whether g is one of the supported goals.
func (g Goal) Valid() bool {
	switch g {
	case GoalPeerNetworking, GoalTargetAudience, GoalIndustryLeaders:
		return true
	default:
		return false
	}
}

// Next returns the goal following g in display order, wrapping around.
// Unknown goals start the cycle from the beginning.
func (g Goal) Next() Goal {
	goals := Goals()
	for i, goal := range goals {
		if goal == g {
			return goals[(i+1)%len(goals)]
		}
	}
	return goals[0]
}

// ParseGoal matches s against the supported goals ignoring case and surrounding spaces.
func ParseGoal(s string) (Goal, bool) {
	s = strings.TrimSpace(s)
	for _, goal := range Goals() {
		if strings.EqualFold(string(goal), s) {
			return goal, true
		}
	}
	return Goal(s), false
}

// WeightsFor returns the weight tuple of the goal.
// Any goal outside the enumeration gets the Peer Networking weights.
func WeightsFor(g Goal) Weights {
	switch g {
	case GoalTargetAudience:
		return Weights{Role: 6, Skill: 2, Seniority: 4, MaxRaw: 120}
	case GoalIndustryLeaders:
		return Weights{Role: 3, Skill: 2, Seniority: 7, MaxRaw: 120}
	case GoalPeerNetworking:
		return Weights{Role: 5, Skill: 4, Seniority: 3, MaxRaw: 120}
	default:
		return WeightsFor(GoalPeerNetworking)
	}
}

// Raw returns the weighted sum of the components.
func Raw(c Components, w Weights) float64 {
	return c.RoleFit*w.Role + c.SkillOverlap*w.Skill + c.SeniorityMatch*w.Seniority
}

// Normalize maps the components to a score in [0,500] and its grade.
func Normalize(c Components, g Goal) (int, string) {
	w := WeightsFor(g)

	score := 0
	if w.MaxRaw > 0 {
		normalized := math.Round(Raw(c, w) / w.MaxRaw * MaxScore)
		if !math.IsNaN(normalized) {
			score = clamp(normalized)
		}
	}

	return score, Grade(score)
}

// Grade buckets a normalized score; every threshold is an inclusive lower bound.
func Grade(score int) string {
	switch {
	case score >= 450:
		return "A+"
	case score >= 400:
		return "A"
	case score >= 350:
		return "B+"
	case score >= 300:
		return "B"
	case score >= 250:
		return "C+"
	case score >= 200:
		return "C"
	case score >= 150:
		return "D"
	default:
		return "F"
	}
}

// GradeColor returns the ANSI 256 color code used to render a grade badge.
func GradeColor(grade string) string {
	switch {
	case strings.HasPrefix(grade, "A"):
		return "34" // green
	case strings.HasPrefix(grade, "B"):
		return "33" // blue
	case strings.HasPrefix(grade, "C"):
		return "220" // yellow
	case strings.HasPrefix(grade, "D"):
		return "208" // orange
	default:
		return "160" // red
	}
}

func clamp(v float64) int {
	if v < 0 {
		return 0
	}
	if v > MaxScore {
		return MaxScore
	}
	return int(v)
}
