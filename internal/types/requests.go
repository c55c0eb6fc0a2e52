package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MatchRequest asks for a match score between a candidate skill set and a job's skill lists.
type MatchRequest struct {
	CandidateSkills []string `json:"candidate_skills" validate:"dive,max=200"`
	RequiredSkills  []string `json:"required_skills" validate:"max=500,dive,max=200"`
	PreferredSkills []string `json:"preferred_skills" validate:"max=500,dive,max=200"`
}

// Validate validates the MatchRequest using the validator.
func (r *MatchRequest) Validate() error {
	return validate.Struct(r)
}

// SuggestRequest asks for skill suggestions based on the skills already held.
type SuggestRequest struct {
	CurrentSkills []string `json:"current_skills" validate:"dive,max=200"`
}

// Validate validates the SuggestRequest using the validator.
func (r *SuggestRequest) Validate() error {
	return validate.Struct(r)
}

// ApplyRequest is the body of an application submission.
type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" validate:"max=20000"`
}

// Validate validates the ApplyRequest using the validator.
func (r *ApplyRequest) Validate() error {
	return validate.Struct(r)
}

// ExtractResponse carries an extracted skill set.
type ExtractResponse struct {
	Skills []string `json:"skills"`
}

// SuggestResponse carries skill suggestions.
type SuggestResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}
