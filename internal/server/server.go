// Package server provides the HTTP REST API for skill extraction and matching.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/skill-matcher/internal/apperrors"
	"github.com/jonathan/skill-matcher/internal/logging"
	"github.com/jonathan/skill-matcher/internal/server/middleware"
	"github.com/jonathan/skill-matcher/internal/server/ratelimit"
	"github.com/jonathan/skill-matcher/internal/skills"
	"github.com/jonathan/skill-matcher/internal/types"
)

const maxBodyBytes = 1 << 20

// Matcher is the matching service the job and candidate endpoints call.
type Matcher interface {
	RankJobs(ctx context.Context, userID uuid.UUID, filter types.JobFilter) ([]types.RankedJob, error)
	ScoreApplication(ctx context.Context, userID, jobID uuid.UUID, coverLetter string) (*types.Application, error)
	ListApplicants(ctx context.Context, jobID uuid.UUID) ([]types.Application, error)
	SearchCandidates(ctx context.Context, skillsCSV string, limit int) ([]types.CandidateMatch, error)
}

// Config holds server configuration
type Config struct {
	Port         int
	TaxonomyPath string // Source for POST /taxonomy/reload; reload is rejected when empty
}

// Deps are the collaborators the server needs. Matcher may be nil, in which
// case only the stateless skill endpoints are useful.
type Deps struct {
	Matcher        Matcher
	Taxonomies     *skills.Store
	TokenValidator middleware.TokenValidator
	RateLimiter    *ratelimit.Limiter
	Logger         *logging.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	matcher      Matcher
	taxonomies   *skills.Store
	taxonomyPath string
	rateLimiter  *ratelimit.Limiter
	logger       *logging.Logger
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		matcher:      deps.Matcher,
		taxonomies:   deps.Taxonomies,
		taxonomyPath: cfg.TaxonomyPath,
		rateLimiter:  deps.RateLimiter,
		logger:       deps.Logger,
	}
	if s.taxonomies == nil {
		s.taxonomies = skills.NewStore(skills.DefaultTaxonomy())
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(nil)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	requireAuth := middleware.AuthMiddleware(deps.TokenValidator)
	optionalAuth := middleware.OptionalAuth(deps.TokenValidator)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Stateless skill endpoints
	mux.HandleFunc("POST /skills/extract", s.handleExtract)
	mux.HandleFunc("POST /skills/match", s.handleMatch)
	mux.HandleFunc("POST /skills/suggestions", s.handleSuggestions)

	// Taxonomy
	mux.HandleFunc("GET /taxonomy", s.handleGetTaxonomy)
	mux.HandleFunc("POST /taxonomy/reload", s.handleReloadTaxonomy)

	// Jobs and applications
	mux.Handle("GET /jobs", optionalAuth(http.HandlerFunc(s.handleListJobs)))
	mux.Handle("POST /jobs/{id}/applications", requireAuth(http.HandlerFunc(s.handleApply)))
	mux.Handle("GET /jobs/{id}/applications", requireAuth(http.HandlerFunc(s.handleListApplicants)))

	// Recruiter candidate search
	mux.Handle("GET /candidates", requireAuth(http.HandlerFunc(s.handleSearchCandidates)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withCORS(s.withRateLimit(s.withLogging(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String())
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a service error to its status and logs server-side failures.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		var appErr *apperrors.Error
		stack := ""
		if errors.As(err, &appErr) {
			stack = string(appErr.Stack)
		}
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"stack", stack)
	}
	s.errorResponse(w, status, apperrors.Message(err))
}

// decodeBody decodes a JSON request body into dst. An empty body leaves dst unchanged
// when allowEmpty is set.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return v, nil
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		"limit", info.Limit,
		"reset_at", info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
