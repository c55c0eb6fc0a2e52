package types

import (
	"time"

	"github.com/google/uuid"
)

// Job status values. Only active jobs are searchable or accept applications.
const (
	JobStatusDraft  = "draft"
	JobStatusActive = "active"
	JobStatusPaused = "paused"
	JobStatusClosed = "closed"
)

// Job is the slice of a job posting the matcher needs.
type Job struct {
	ID               uuid.UUID `json:"id"`
	CompanyName      string    `json:"company_name,omitempty"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Location         string    `json:"location,omitempty"`
	Status           string    `json:"status"`
	RequiredSkills   []string  `json:"required_skills"`
	PreferredSkills  []string  `json:"preferred_skills"`
	ApplicationCount int       `json:"application_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// IsActive reports whether the job accepts applications.
func (j *Job) IsActive() bool {
	return j.Status == JobStatusActive
}

// JobFilter narrows a job search. Empty fields do not filter.
type JobFilter struct {
	Keywords string
	Location string
	Limit    int
}

// Application is a candidate's application to a job with its match score.
type Application struct {
	ID              uuid.UUID `json:"id"`
	JobID           uuid.UUID `json:"job_id"`
	UserID          uuid.UUID `json:"user_id"`
	ResumeSnapshot  *Resume   `json:"resume_snapshot,omitempty"`
	CoverLetter     string    `json:"cover_letter,omitempty"`
	SkillMatchScore int       `json:"skill_match_score"`
	AppliedAt       time.Time `json:"applied_at"`
}

// ApplicationCreateInput is used when persisting a new application.
type ApplicationCreateInput struct {
	JobID           uuid.UUID
	UserID          uuid.UUID
	ResumeSnapshot  *Resume
	CoverLetter     string
	SkillMatchScore int
}

// Candidate is a user together with their resume, as seen by recruiter search.
type Candidate struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Resume *Resume   `json:"-"`
}
