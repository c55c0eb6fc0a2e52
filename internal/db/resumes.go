package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/skill-matcher/internal/types"
)

// GetLatestResume returns the user's most recently updated resume, or nil if the user has none.
func (db *DB) GetLatestResume(ctx context.Context, userID uuid.UUID) (*types.Resume, error) {
	var (
		id        uuid.UUID
		content   []byte
		updatedAt time.Time
	)

	err := db.pool.QueryRow(ctx,
		`SELECT id, content, updated_at
		 FROM resumes
		 WHERE user_id = $1
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&id, &content, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	return decodeResumeRow(id, userID, content, updatedAt)
}

// SaveResume inserts a resume for userID and returns it with its stored ID and timestamp.
func (db *DB) SaveResume(ctx context.Context, userID uuid.UUID, resume *types.Resume) (*types.Resume, error) {
	content, err := json.Marshal(resume)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resume: %w", err)
	}

	var (
		id        uuid.UUID
		updatedAt time.Time
	)
	err = db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, content)
		 VALUES ($1, $2)
		 RETURNING id, updated_at`,
		userID, content,
	).Scan(&id, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save resume: %w", err)
	}

	return decodeResumeRow(id, userID, content, updatedAt)
}

// decodeResumeRow rebuilds a resume from its stored JSON. Row columns win over
// any id/user/timestamp embedded in the document.
func decodeResumeRow(id, userID uuid.UUID, content []byte, updatedAt time.Time) (*types.Resume, error) {
	resume, err := types.DecodeResume(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode resume %s: %w", id, err)
	}
	resume.ID = id
	resume.UserID = userID
	resume.UpdatedAt = updatedAt
	return resume, nil
}
