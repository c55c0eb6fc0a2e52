package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/skill-matcher/internal/schemas"
	"github.com/jonathan/skill-matcher/internal/skills"
	"github.com/jonathan/skill-matcher/internal/types"
)

// validationResponse is the 400 body for a resume that fails schema validation.
type validationResponse struct {
	Error   string              `json:"error"`
	Details []schemas.FieldError `json:"details,omitempty"`
}

// handleExtract extracts the canonical skill set from a resume document.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	if err := schemas.Validate(schemas.Resume, body); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			s.jsonResponse(w, http.StatusBadRequest, validationResponse{
				Error:   "Resume failed validation",
				Details: ve.Errors,
			})
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid resume: "+err.Error())
		return
	}

	resume, err := types.DecodeResume(body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid resume: "+err.Error())
		return
	}

	set := skills.NewExtractor(s.taxonomies.Load()).Extract(resume)
	s.jsonResponse(w, http.StatusOK, types.ExtractResponse{Skills: set.Names()})
}

// handleMatch scores a candidate skill list against required and preferred lists.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeBody(r, &req, false); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	result := skills.Match(skills.NewSkillSet(req.CandidateSkills...), req.RequiredSkills, req.PreferredSkills)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleSuggestions recommends taxonomy skills for categories the caller already works in.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req types.SuggestRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeBody(r, &req, false); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	suggestions := skills.Suggest(s.taxonomies.Load(), skills.NewSkillSet(req.CurrentSkills...))
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}
	s.jsonResponse(w, http.StatusOK, types.SuggestResponse{Suggestions: suggestions})
}
