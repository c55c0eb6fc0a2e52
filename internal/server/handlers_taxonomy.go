package server

import (
	"net/http"
)

// TaxonomyReloadResponse reports the snapshot installed by a reload.
type TaxonomyReloadResponse struct {
	Version    string `json:"version"`
	Categories int    `json:"categories"`
	Skills     int    `json:"skills"`
}

// handleGetTaxonomy returns the current taxonomy snapshot.
func (s *Server) handleGetTaxonomy(w http.ResponseWriter, _ *http.Request) {
	t := s.taxonomies.Load()
	w.Header().Set("X-Taxonomy-Version", t.Version())
	s.jsonResponse(w, http.StatusOK, t)
}

// handleReloadTaxonomy re-reads the configured taxonomy file and swaps it in.
func (s *Server) handleReloadTaxonomy(w http.ResponseWriter, _ *http.Request) {
	if s.taxonomyPath == "" {
		s.errorResponse(w, http.StatusBadRequest, "No taxonomy file configured (set TAXONOMY_PATH)")
		return
	}

	t, err := s.taxonomies.ReloadFile(s.taxonomyPath)
	if err != nil {
		s.logger.Warn("taxonomy reload rejected", "path", s.taxonomyPath, "error", err)
		s.errorResponse(w, http.StatusBadRequest, "Taxonomy reload failed: "+err.Error())
		return
	}

	s.logger.Info("taxonomy reloaded", "version", t.Version(), "skills", len(t.Skills()))
	s.jsonResponse(w, http.StatusOK, TaxonomyReloadResponse{
		Version:    t.Version(),
		Categories: len(t.Categories()),
		Skills:     len(t.Skills()),
	})
}
