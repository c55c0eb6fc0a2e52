// Package matching scores jobs, applications and candidates against resumes.
package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/skill-matcher/internal/apperrors"
	"github.com/jonathan/skill-matcher/internal/cache"
	"github.com/jonathan/skill-matcher/internal/db"
	"github.com/jonathan/skill-matcher/internal/events"
	"github.com/jonathan/skill-matcher/internal/logging"
	"github.com/jonathan/skill-matcher/internal/skills"
	"github.com/jonathan/skill-matcher/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent candidate scoring when Options.Workers is unset.
const DefaultWorkers = 8

// Repository is the storage the service reads from and writes to.
// Lookups return (nil, nil) when the row does not exist. CreateApplication
// returns db.ErrDuplicateApplication for a repeated (job, user) pair.
type Repository interface {
	GetLatestResume(ctx context.Context, userID uuid.UUID) (*types.Resume, error)
	ListActiveJobs(ctx context.Context, filter types.JobFilter) ([]types.Job, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*types.Job, error)
	HasApplied(ctx context.Context, jobID, userID uuid.UUID) (bool, error)
	CreateApplication(ctx context.Context, input *types.ApplicationCreateInput) (*types.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]types.Application, error)
	ListCandidates(ctx context.Context, limit int) ([]types.Candidate, error)
}

// Options configures optional collaborators. Zero values disable caching,
// drop events and discard logs.
type Options struct {
	Cache     cache.Cache
	CacheTTL  time.Duration
	Publisher events.Publisher
	Logger    *logging.Logger
	Workers   int
}

// Service ranks jobs, scores applications and searches candidates by skill.
type Service struct {
	repo       Repository
	taxonomies *skills.Store
	cache      cache.Cache
	cacheTTL   time.Duration
	publisher  events.Publisher
	logger     *logging.Logger
	workers    int
	now        func() time.Time
}

// NewService builds a Service. A nil store falls back to the default taxonomy.
func NewService(repo Repository, taxonomies *skills.Store, opts Options) *Service {
	if taxonomies == nil {
		taxonomies = skills.NewStore(skills.DefaultTaxonomy())
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	return &Service{
		repo:       repo,
		taxonomies: taxonomies,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		publisher:  opts.Publisher,
		logger:     opts.Logger.With("component", "matching"),
		workers:    opts.Workers,
		now:        time.Now,
	}
}

// RankJobs lists active jobs and scores each against the user's latest resume.
// Anonymous users and users without a resume get the jobs unscored.
func (s *Service) RankJobs(ctx context.Context, userID uuid.UUID, filter types.JobFilter) ([]types.RankedJob, error) {
	jobs, err := s.repo.ListActiveJobs(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("listing jobs", err)
	}

	ranked := make([]types.RankedJob, len(jobs))
	for i := range jobs {
		ranked[i] = types.RankedJob{Job: jobs[i]}
	}
	if userID == uuid.Nil {
		return ranked, nil
	}

	resume, err := s.repo.GetLatestResume(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("loading resume", err)
	}
	if resume == nil {
		return ranked, nil
	}

	candidate := s.skillsFor(ctx, resume, s.taxonomies.Load())
	for i := range ranked {
		score := skills.Score(candidate, ranked[i].RequiredSkills, ranked[i].PreferredSkills)
		ranked[i].MatchScore = &score
	}

	if candidate.Len() > 0 {
		sort.SliceStable(ranked, func(i, j int) bool {
			return *ranked[i].MatchScore > *ranked[j].MatchScore
		})
	}
	return ranked, nil
}

// ScoreApplication scores the user's resume against an active job, stores the
// application with a resume snapshot and publishes an applications.scored event.
func (s *Service) ScoreApplication(ctx context.Context, userID, jobID uuid.UUID, coverLetter string) (*types.Application, error) {
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, apperrors.Internal("loading job", err)
	}
	if job == nil || !job.IsActive() {
		return nil, apperrors.NotFound("job not found or not accepting applications", nil)
	}

	applied, err := s.repo.HasApplied(ctx, jobID, userID)
	if err != nil {
		return nil, apperrors.Internal("checking existing application", err)
	}
	if applied {
		return nil, apperrors.Conflict("already applied to this job", nil)
	}

	resume, err := s.repo.GetLatestResume(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("loading resume", err)
	}
	if resume == nil {
		return nil, apperrors.InvalidInput("create a resume first", nil)
	}

	candidate := s.skillsFor(ctx, resume, s.taxonomies.Load())
	score := skills.Score(candidate, job.RequiredSkills, job.PreferredSkills)

	app, err := s.repo.CreateApplication(ctx, &types.ApplicationCreateInput{
		JobID:           jobID,
		UserID:          userID,
		ResumeSnapshot:  resume,
		CoverLetter:     coverLetter,
		SkillMatchScore: score,
	})
	if errors.Is(err, db.ErrDuplicateApplication) {
		return nil, apperrors.Conflict("already applied to this job", err)
	}
	if err != nil {
		return nil, apperrors.Internal("saving application", err)
	}

	event := events.ApplicationScored{
		ApplicationID:   app.ID,
		JobID:           app.JobID,
		UserID:          app.UserID,
		SkillMatchScore: app.SkillMatchScore,
		ScoredAt:        s.now().UTC(),
	}
	if err := s.publisher.PublishApplicationScored(ctx, event); err != nil {
		s.logger.Warn("application stored but event not published",
			"application_id", app.ID.String(),
			"error", err)
	}

	s.logger.Info("application scored",
		"application_id", app.ID.String(),
		"job_id", jobID.String(),
		"score", score)
	return app, nil
}

// ListApplicants returns a job's applications, highest score first and most
// recent first within a score.
func (s *Service) ListApplicants(ctx context.Context, jobID uuid.UUID) ([]types.Application, error) {
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, apperrors.Internal("loading job", err)
	}
	if job == nil {
		return nil, apperrors.NotFound("job not found", nil)
	}

	apps, err := s.repo.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, apperrors.Internal("listing applications", err)
	}

	// Triage order: score desc, then newest first.
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].SkillMatchScore != apps[j].SkillMatchScore {
			return apps[i].SkillMatchScore > apps[j].SkillMatchScore
		}
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
	return apps, nil
}

// SearchCandidates scores candidates against a comma-separated skill query.
// With a non-empty query, candidates scoring 0 are dropped and the rest are
// ordered best first. Without one, every candidate is returned with score 0.
func (s *Service) SearchCandidates(ctx context.Context, skillsCSV string, limit int) ([]types.CandidateMatch, error) {
	query := ParseSkillQuery(skillsCSV)

	candidates, err := s.repo.ListCandidates(ctx, limit)
	if err != nil {
		return nil, apperrors.Internal("listing candidates", err)
	}

	taxonomy := s.taxonomies.Load()
	results := make([]types.CandidateMatch, len(candidates))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range candidates {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			c := candidates[i]
			set := s.skillsFor(gCtx, c.Resume, taxonomy)

			experience := []types.ExperienceEntry{}
			if c.Resume != nil && c.Resume.Experience != nil {
				experience = c.Resume.Experience
			}

			results[i] = types.CandidateMatch{
				UserID:     c.UserID,
				Name:       c.Name,
				Email:      c.Email,
				Skills:     set.Names(),
				Experience: experience,
				MatchScore: skills.Score(set, query, nil),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Unavailable("candidate search canceled", err)
	}

	if len(query) == 0 {
		return results, nil
	}

	matched := results[:0]
	for _, r := range results {
		if r.MatchScore > 0 {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].MatchScore > matched[j].MatchScore
	})
	return matched, nil
}

// ParseSkillQuery splits a comma-separated skill list, trimming entries and
// dropping empty ones.
func ParseSkillQuery(csv string) []string {
	query := []string{}
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			query = append(query, part)
		}
	}
	return query
}

// skillsFor extracts a resume's skills, going through the cache when one is
// configured. Cache failures are logged and fall back to extraction.
func (s *Service) skillsFor(ctx context.Context, resume *types.Resume, taxonomy *skills.Taxonomy) *skills.SkillSet {
	extractor := skills.NewExtractor(taxonomy)
	if resume == nil {
		return skills.NewSkillSet()
	}
	if s.cache == nil || resume.ID == uuid.Nil {
		return extractor.Extract(resume)
	}

	key := cacheKey(resume, taxonomy)
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var names []string
		if jsonErr := json.Unmarshal([]byte(raw), &names); jsonErr == nil {
			return skills.NewSkillSet(names...)
		}
		s.logger.Warn("discarding undecodable cached skill set", "key", key)
	case !errors.Is(err, cache.ErrNotFound):
		s.logger.Warn("skill cache read failed", "key", key, "error", err)
	}

	set := extractor.Extract(resume)

	data, err := json.Marshal(set.Names())
	if err == nil {
		err = s.cache.Set(ctx, key, string(data), s.cacheTTL)
	}
	if err != nil {
		s.logger.Warn("skill cache write failed", "key", key, "error", err)
	}
	return set
}

func cacheKey(resume *types.Resume, taxonomy *skills.Taxonomy) string {
	return fmt.Sprintf("skills:%s:%d:%s", resume.ID, resume.UpdatedAt.UnixNano(), taxonomy.Version())
}
