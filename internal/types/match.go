package types

import "github.com/google/uuid"

// MatchResult is a match score with the skill overlap that produced it.
// Skill lists keep the job's order.
type MatchResult struct {
	Score            int      `json:"score"`
	MatchedRequired  []string `json:"matched_required"`
	MissingRequired  []string `json:"missing_required"`
	MatchedPreferred []string `json:"matched_preferred"`
	MissingPreferred []string `json:"missing_preferred"`
}

// Suggestion is an advisory skill the candidate could add.
type Suggestion struct {
	Skill    string `json:"skill"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// RankedJob is a job annotated with the caller's match score.
// MatchScore is nil when the caller has no resume to score.
type RankedJob struct {
	Job
	MatchScore *int `json:"match_score,omitempty"`
}

// CandidateMatch is one recruiter search hit.
type CandidateMatch struct {
	UserID     uuid.UUID         `json:"user_id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Skills     []string          `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`
	MatchScore int               `json:"match_score"`
}
