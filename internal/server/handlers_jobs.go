package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/skill-matcher/internal/server/middleware"
	"github.com/jonathan/skill-matcher/internal/types"
)

// handleListJobs lists active jobs, ranked by fit when the caller is signed in
// and has a resume.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.matcher == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Job search is not configured")
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	filter := types.JobFilter{
		Keywords: q.Get("keywords"),
		Location: q.Get("location"),
		Limit:    limit,
	}

	// uuid.Nil for anonymous callers.
	userID, err := middleware.GetUserID(r)
	if err != nil {
		userID = uuid.Nil
	}

	jobs, err := s.matcher.RankJobs(r.Context(), userID, filter)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// handleApply scores the caller's resume against the job and records the application.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if s.matcher == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Applications are not configured")
		return
	}

	jobID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.ApplyRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeBody(r, &req, true); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	app, err := s.matcher.ScoreApplication(r.Context(), userID, jobID, req.CoverLetter)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, app)
}

// handleListApplicants returns a job's applications in triage order.
func (s *Server) handleListApplicants(w http.ResponseWriter, r *http.Request) {
	if s.matcher == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Applications are not configured")
		return
	}

	jobID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	apps, err := s.matcher.ListApplicants(r.Context(), jobID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": apps,
		"count":        len(apps),
	})
}

// pathUUID parses a UUID path value, writing a 400 when it is malformed.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
