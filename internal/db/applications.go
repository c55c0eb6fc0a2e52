package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/skill-matcher/internal/types"
)

const uniqueViolation = "23505"

// HasApplied reports whether userID already applied to jobID.
func (db *DB) HasApplied(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND user_id = $2)`,
		jobID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check application: %w", err)
	}
	return exists, nil
}

// CreateApplication stores an application and bumps the job's application count
// in one transaction. A second application by the same user returns ErrDuplicateApplication.
func (db *DB) CreateApplication(ctx context.Context, input *types.ApplicationCreateInput) (*types.Application, error) {
	var snapshot []byte
	if input.ResumeSnapshot != nil {
		var err error
		snapshot, err = json.Marshal(input.ResumeSnapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal resume snapshot: %w", err)
		}
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	app := &types.Application{
		JobID:           input.JobID,
		UserID:          input.UserID,
		ResumeSnapshot:  input.ResumeSnapshot,
		CoverLetter:     input.CoverLetter,
		SkillMatchScore: input.SkillMatchScore,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO applications (job_id, user_id, resume_snapshot, cover_letter, skill_match_score)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, applied_at`,
		input.JobID, input.UserID, snapshot, input.CoverLetter, input.SkillMatchScore,
	).Scan(&app.ID, &app.AppliedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateApplication
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE jobs SET application_count = application_count + 1 WHERE id = $1`,
		input.JobID,
	); err != nil {
		return nil, fmt.Errorf("failed to update application count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit application: %w", err)
	}
	return app, nil
}

// ListApplicationsByJob returns a job's applications, best match first.
func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]types.Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, user_id, resume_snapshot, cover_letter, skill_match_score, applied_at
		 FROM applications
		 WHERE job_id = $1
		 ORDER BY skill_match_score DESC, applied_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []types.Application{}
	for rows.Next() {
		var (
			app      types.Application
			snapshot []byte
		)
		if err := rows.Scan(&app.ID, &app.JobID, &app.UserID, &snapshot,
			&app.CoverLetter, &app.SkillMatchScore, &app.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		if snapshot != nil {
			if resume, err := types.DecodeResume(snapshot); err == nil {
				app.ResumeSnapshot = resume
			}
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return apps, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

