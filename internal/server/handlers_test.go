package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/skill-matcher/internal/apperrors"
	"github.com/jonathan/skill-matcher/internal/server/middleware"
	"github.com/jonathan/skill-matcher/internal/skills"
	"github.com/jonathan/skill-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatcher struct {
	jobs       []types.RankedJob
	apps       []types.Application
	candidates []types.CandidateMatch
	err        error

	gotUserID      uuid.UUID
	gotJobID       uuid.UUID
	gotFilter      types.JobFilter
	gotCoverLetter string
	gotSkills      string
	gotLimit       int
}

func (f *fakeMatcher) RankJobs(_ context.Context, userID uuid.UUID, filter types.JobFilter) ([]types.RankedJob, error) {
	f.gotUserID, f.gotFilter = userID, filter
	return f.jobs, f.err
}

func (f *fakeMatcher) ScoreApplication(_ context.Context, userID, jobID uuid.UUID, coverLetter string) (*types.Application, error) {
	f.gotUserID, f.gotJobID, f.gotCoverLetter = userID, jobID, coverLetter
	if f.err != nil {
		return nil, f.err
	}
	return &types.Application{ID: uuid.New(), JobID: jobID, UserID: userID, SkillMatchScore: 70, AppliedAt: time.Now()}, nil
}

func (f *fakeMatcher) ListApplicants(_ context.Context, jobID uuid.UUID) ([]types.Application, error) {
	f.gotJobID = jobID
	return f.apps, f.err
}

func (f *fakeMatcher) SearchCandidates(_ context.Context, skillsCSV string, limit int) ([]types.CandidateMatch, error) {
	f.gotSkills, f.gotLimit = skillsCSV, limit
	return f.candidates, f.err
}

type userClaims uuid.UUID

func (c userClaims) GetUserID() uuid.UUID { return uuid.UUID(c) }

// tokenTable accepts exactly the tokens it maps to users.
type tokenTable map[string]uuid.UUID

func (tt tokenTable) ValidateToken(token string) (middleware.UserIDGetter, error) {
	id, ok := tt[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return userClaims(id), nil
}

var testUser = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func newMatcherServer(t *testing.T, m *fakeMatcher) *Server {
	t.Helper()
	return newTestServer(t, Deps{
		Matcher:        m,
		TokenValidator: tokenTable{"good": testUser},
	})
}

func serve(s *Server, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleExtract(t *testing.T) {
	s := newTestServer(t, Deps{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantSkills []string
	}{
		{
			name:       "flat list plus achievements",
			body:       `{"skills":["go","Docker"],"experience":[{"achievements":["Deployed services to Kubernetes"]}]}`,
			wantStatus: http.StatusOK,
			wantSkills: []string{"go", "Docker", "Kubernetes"},
		},
		{
			name:       "categorized skills",
			body:       `{"skills":{"Languages":["Python"],"Data":["Redis"]}}`,
			wantStatus: http.StatusOK,
			wantSkills: []string{"Python", "Redis"},
		},
		{
			name:       "non-list category value",
			body:       `{"skills":{"Languages":["Python"],"notes":"self-taught"}}`,
			wantStatus: http.StatusOK,
			wantSkills: []string{"Python"},
		},
		{
			name:       "named objects inside a category",
			body:       `{"skills":{"Cloud":[{"name":"AWS"},"Docker"]}}`,
			wantStatus: http.StatusOK,
			wantSkills: []string{"AWS", "Docker"},
		},
		{
			name:       "empty resume",
			body:       `{}`,
			wantStatus: http.StatusOK,
			wantSkills: []string{},
		},
		{
			name:       "schema violation",
			body:       `{"skills":42}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not JSON",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, http.MethodPost, "/skills/extract", tt.body, "")
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp types.ExtractResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantSkills, resp.Skills)
		})
	}
}

func TestHandleExtract_ValidationDetails(t *testing.T) {
	s := newTestServer(t, Deps{})

	w := serve(s, http.MethodPost, "/skills/extract", `{"experience":"ten years"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp validationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Details)
}

func TestHandleMatch(t *testing.T) {
	s := newTestServer(t, Deps{})

	body := `{"candidate_skills":["Go"],"required_skills":["go","Rust"],"preferred_skills":["Docker"]}`
	w := serve(s, http.MethodPost, "/skills/match", body, "")
	require.Equal(t, http.StatusOK, w.Code)

	var result types.MatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 35, result.Score)
	assert.Equal(t, []string{"go"}, result.MatchedRequired)
	assert.Equal(t, []string{"Rust"}, result.MissingRequired)
	assert.Equal(t, []string{"Docker"}, result.MissingPreferred)
}

func TestHandleMatch_BadBody(t *testing.T) {
	s := newTestServer(t, Deps{})

	w := serve(s, http.MethodPost, "/skills/match", `{"required_skills":"Go"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSuggestions(t *testing.T) {
	s := newTestServer(t, Deps{})

	w := serve(s, http.MethodPost, "/skills/suggestions", `{"current_skills":["Docker"]}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.SuggestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Suggestions)
	for _, sug := range resp.Suggestions {
		assert.Equal(t, "cloud", sug.Category)
		assert.NotEqual(t, "Docker", sug.Skill)
	}
}

func TestHandleSuggestions_NoSkills(t *testing.T) {
	s := newTestServer(t, Deps{})

	w := serve(s, http.MethodPost, "/skills/suggestions", `{"current_skills":[]}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"suggestions":[]}`, w.Body.String())
}

func TestHandleGetTaxonomy(t *testing.T) {
	s := newTestServer(t, Deps{})

	w := serve(s, http.MethodGet, "/taxonomy", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, skills.DefaultTaxonomy().Version(), w.Header().Get("X-Taxonomy-Version"))

	parsed, err := skills.ParseTaxonomy(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, skills.DefaultTaxonomy().Version(), parsed.Version())
}

func TestHandleReloadTaxonomy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"categories":[{"name":"data","skills":["Spark","Kafka"]}]}`), 0o600))

	store := skills.NewStore(skills.DefaultTaxonomy())
	s := New(Config{TaxonomyPath: path}, Deps{Taxonomies: store, RateLimiter: unlimited()})
	t.Cleanup(s.rateLimiter.Stop)

	w := serve(s, http.MethodPost, "/taxonomy/reload", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TaxonomyReloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Categories)
	assert.Equal(t, 2, resp.Skills)
	assert.Equal(t, store.Load().Version(), resp.Version)
	assert.Equal(t, []string{"Spark", "Kafka"}, store.Load().Skills())
}

func TestHandleReloadTaxonomy_Errors(t *testing.T) {
	t.Run("no path configured", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		w := serve(s, http.MethodPost, "/taxonomy/reload", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid file keeps current taxonomy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "taxonomy.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"categories":"nope"}`), 0o600))

		store := skills.NewStore(skills.DefaultTaxonomy())
		before := store.Load()
		s := New(Config{TaxonomyPath: path}, Deps{Taxonomies: store, RateLimiter: unlimited()})
		t.Cleanup(s.rateLimiter.Stop)

		w := serve(s, http.MethodPost, "/taxonomy/reload", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Same(t, before, store.Load())
	})
}

func TestHandleListJobs(t *testing.T) {
	score := 70
	m := &fakeMatcher{jobs: []types.RankedJob{{Job: types.Job{ID: uuid.New(), Title: "Backend Engineer"}, MatchScore: &score}}}
	s := newMatcherServer(t, m)

	t.Run("anonymous", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/jobs?keywords=go&location=Remote&limit=5", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uuid.Nil, m.gotUserID)
		assert.Equal(t, types.JobFilter{Keywords: "go", Location: "Remote", Limit: 5}, m.gotFilter)

		var resp struct {
			Jobs  []types.RankedJob `json:"jobs"`
			Count int               `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		require.NotNil(t, resp.Jobs[0].MatchScore)
		assert.Equal(t, 70, *resp.Jobs[0].MatchScore)
	})

	t.Run("signed in", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/jobs", "", "good")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testUser, m.gotUserID)
	})

	t.Run("bad token", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/jobs", "", "forged")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/jobs?limit=x", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleApply(t *testing.T) {
	jobID := uuid.New()

	t.Run("created", func(t *testing.T) {
		m := &fakeMatcher{}
		s := newMatcherServer(t, m)

		w := serve(s, http.MethodPost, "/jobs/"+jobID.String()+"/applications", `{"cover_letter":"Hello"}`, "good")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, testUser, m.gotUserID)
		assert.Equal(t, jobID, m.gotJobID)
		assert.Equal(t, "Hello", m.gotCoverLetter)

		var app types.Application
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &app))
		assert.Equal(t, 70, app.SkillMatchScore)
	})

	t.Run("empty body", func(t *testing.T) {
		m := &fakeMatcher{}
		s := newMatcherServer(t, m)

		w := serve(s, http.MethodPost, "/jobs/"+jobID.String()+"/applications", "", "good")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, m.gotCoverLetter)
	})

	tests := []struct {
		name       string
		path       string
		body       string
		token      string
		err        error
		wantStatus int
	}{
		{"no token", "/jobs/" + jobID.String() + "/applications", "", "", nil, http.StatusUnauthorized},
		{"bad job id", "/jobs/abc/applications", "", "good", nil, http.StatusBadRequest},
		{"cover letter too long", "/jobs/" + jobID.String() + "/applications", `{"cover_letter":"` + strings.Repeat("x", 20001) + `"}`, "good", nil, http.StatusBadRequest},
		{"job missing", "/jobs/" + jobID.String() + "/applications", "", "good", apperrors.NotFound("job not found or not accepting applications", nil), http.StatusNotFound},
		{"duplicate", "/jobs/" + jobID.String() + "/applications", "", "good", apperrors.Conflict("already applied to this job", nil), http.StatusConflict},
		{"no resume", "/jobs/" + jobID.String() + "/applications", "", "good", apperrors.InvalidInput("create a resume first", nil), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMatcherServer(t, &fakeMatcher{err: tt.err})
			w := serve(s, http.MethodPost, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestHandleListApplicants(t *testing.T) {
	jobID := uuid.New()
	m := &fakeMatcher{apps: []types.Application{
		{ID: uuid.New(), JobID: jobID, SkillMatchScore: 90},
		{ID: uuid.New(), JobID: jobID, SkillMatchScore: 40},
	}}
	s := newMatcherServer(t, m)

	w := serve(s, http.MethodGet, "/jobs/"+jobID.String()+"/applications", "", "good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, jobID, m.gotJobID)

	var resp struct {
		Applications []types.Application `json:"applications"`
		Count        int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 90, resp.Applications[0].SkillMatchScore)

	w = serve(s, http.MethodGet, "/jobs/"+jobID.String()+"/applications", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleSearchCandidates(t *testing.T) {
	m := &fakeMatcher{candidates: []types.CandidateMatch{{UserID: uuid.New(), Name: "Ada", Skills: []string{"Go"}, MatchScore: 70}}}
	s := newMatcherServer(t, m)

	w := serve(s, http.MethodGet, "/candidates?skills=Go,%20Rust&limit=50", "", "good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Go, Rust", m.gotSkills)
	assert.Equal(t, 50, m.gotLimit)

	var resp struct {
		Candidates []types.CandidateMatch `json:"candidates"`
		Count      int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Ada", resp.Candidates[0].Name)
}

func TestHandleSearchCandidates_Errors(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		s := newMatcherServer(t, &fakeMatcher{})
		w := serve(s, http.MethodGet, "/candidates?skills=Go", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("service unavailable", func(t *testing.T) {
		s := newMatcherServer(t, &fakeMatcher{err: apperrors.Unavailable("candidate search canceled", context.Canceled)})
		w := serve(s, http.MethodGet, "/candidates?skills=Go", "", "good")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestMatcherEndpoints_NotConfigured(t *testing.T) {
	s := newTestServer(t, Deps{TokenValidator: tokenTable{"good": testUser}})

	for _, target := range []string{"/jobs", "/candidates"} {
		w := serve(s, http.MethodGet, target, "", "good")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
	}
}
