package skills

import (
	"math"

	"github.com/jonathan/skill-matcher/internal/types"
)

// Score weights. When a job lists no preferred skills the preferred weight is
// unavailable and the best reachable score is RequiredWeight.
const (
	RequiredWeight  = 70
	PreferredWeight = 30
)

// Score returns the weighted [0,100] overlap between a candidate's skills and
// a job's required and preferred lists. It is 0 when either the candidate set
// or the required list is empty.
func Score(candidate *SkillSet, required, preferred []string) int {
	return Match(candidate, required, preferred).Score
}

// Match scores like Score and also reports which job skills matched.
// Duplicate entries in a job list count once per occurrence.
func Match(candidate *SkillSet, required, preferred []string) types.MatchResult {
	result := types.MatchResult{
		MatchedRequired:  []string{},
		MissingRequired:  []string{},
		MatchedPreferred: []string{},
		MissingPreferred: []string{},
	}

	for _, skill := range required {
		if candidate.Contains(skill) {
			result.MatchedRequired = append(result.MatchedRequired, skill)
		} else {
			result.MissingRequired = append(result.MissingRequired, skill)
		}
	}
	for _, skill := range preferred {
		if candidate.Contains(skill) {
			result.MatchedPreferred = append(result.MatchedPreferred, skill)
		} else {
			result.MissingPreferred = append(result.MissingPreferred, skill)
		}
	}

	if candidate.Len() == 0 || len(required) == 0 {
		return result
	}

	total := float64(len(result.MatchedRequired)) / float64(len(required)) * RequiredWeight
	if len(preferred) > 0 {
		total += float64(len(result.MatchedPreferred)) / float64(len(preferred)) * PreferredWeight
	}

	score := int(math.Floor(total + 0.5))
	result.Score = max(0, min(100, score))
	return result
}
