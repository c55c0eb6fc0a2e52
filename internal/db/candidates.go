package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/skill-matcher/internal/types"
)

const (
	DefaultCandidateLimit = 20
	MaxCandidateLimit     = 500
)

// ListCandidates returns candidate users that have a resume, each with their
// latest resume, newest users first.
func (db *DB) ListCandidates(ctx context.Context, limit int) ([]types.Candidate, error) {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}
	if limit > MaxCandidateLimit {
		limit = MaxCandidateLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, r.id, r.content, r.updated_at
		 FROM users u
		 JOIN LATERAL (
		     SELECT id, content, updated_at
		     FROM resumes
		     WHERE user_id = u.id
		     ORDER BY updated_at DESC
		     LIMIT 1
		 ) r ON true
		 WHERE u.role = 'candidate'
		 ORDER BY u.created_at DESC, u.id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []types.Candidate{}
	for rows.Next() {
		var (
			c         types.Candidate
			resumeID  uuid.UUID
			content   []byte
			updatedAt time.Time
		)
		if err := rows.Scan(&c.UserID, &c.Name, &c.Email, &resumeID, &content, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		resume, err := decodeResumeRow(resumeID, c.UserID, content, updatedAt)
		if err != nil {
			return nil, err
		}
		c.Resume = resume
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return candidates, nil
}

// CreateUser inserts a user with the given role and returns its ID.
func (db *DB) CreateUser(ctx context.Context, name, email, role string) (uuid.UUID, error) {
	if role == "" {
		role = "candidate"
	}
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, role) VALUES ($1, $2, $3) RETURNING id`,
		name, email, role,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}
