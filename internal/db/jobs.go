package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/skill-matcher/internal/types"
)

const (
	DefaultJobLimit = 20
	MaxJobLimit     = 100
)

const jobColumns = `id, company_name, title, description, location, status,
	required_skills, preferred_skills, application_count, created_at`

// JobCreateInput holds the fields needed to create a job.
type JobCreateInput struct {
	CompanyName     string
	Title           string
	Description     string
	Location        string
	Status          string
	RequiredSkills  []string
	PreferredSkills []string
}

// ListActiveJobs returns active jobs matching filter, newest first.
func (db *DB) ListActiveJobs(ctx context.Context, filter types.JobFilter) ([]types.Job, error) {
	query, args := buildActiveJobsQuery(filter)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// GetJobByID retrieves a job regardless of status, or nil if it does not exist.
func (db *DB) GetJobByID(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// CreateJob inserts a job.
func (db *DB) CreateJob(ctx context.Context, input *JobCreateInput) (*types.Job, error) {
	status := input.Status
	if status == "" {
		status = types.JobStatusDraft
	}

	required, err := json.Marshal(nonNil(input.RequiredSkills))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal required skills: %w", err)
	}
	preferred, err := json.Marshal(nonNil(input.PreferredSkills))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preferred skills: %w", err)
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (company_name, title, description, location, status, required_skills, preferred_skills)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+jobColumns,
		input.CompanyName, input.Title, input.Description, input.Location, status, required, preferred,
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// buildActiveJobsQuery builds the search query. Keywords match title or
// description, location matches location; both case-insensitive substrings.
func buildActiveJobsQuery(filter types.JobFilter) (string, []any) {
	conditions := []string{"status = 'active'"}
	var args []any
	argIndex := 1

	if kw := strings.TrimSpace(filter.Keywords); kw != "" {
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, likePattern(kw))
		argIndex++
	}

	if loc := strings.TrimSpace(filter.Location); loc != "" {
		conditions = append(conditions, fmt.Sprintf("location ILIKE $%d", argIndex))
		args = append(args, likePattern(loc))
		argIndex++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultJobLimit
	}
	if limit > MaxJobLimit {
		limit = MaxJobLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT %s
		 FROM jobs
		 WHERE %s
		 ORDER BY created_at DESC, id
		 LIMIT $%d`,
		jobColumns, strings.Join(conditions, " AND "), argIndex,
	)
	return query, args
}

// likePattern wraps s in % after escaping LIKE metacharacters.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func scanJob(row pgx.Row) (*types.Job, error) {
	var (
		job                 types.Job
		required, preferred []byte
	)
	err := row.Scan(
		&job.ID, &job.CompanyName, &job.Title, &job.Description, &job.Location, &job.Status,
		&required, &preferred, &job.ApplicationCount, &job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	job.RequiredSkills = decodeSkillNames(required)
	job.PreferredSkills = decodeSkillNames(preferred)
	return &job, nil
}

// decodeSkillNames reads a JSONB skill list, keeping only string entries.
func decodeSkillNames(data []byte) []string {
	names := []string{}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return names
	}
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			names = append(names, s)
		}
	}
	return names
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
