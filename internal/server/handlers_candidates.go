package server

import (
	"net/http"
)

// handleSearchCandidates ranks candidates against the comma-separated skills query.
func (s *Server) handleSearchCandidates(w http.ResponseWriter, r *http.Request) {
	if s.matcher == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Candidate search is not configured")
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	candidates, err := s.matcher.SearchCandidates(r.Context(), r.URL.Query().Get("skills"), limit)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidates": candidates,
		"count":      len(candidates),
	})
}
