package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/skill-matcher/internal/schemas"
	"github.com/jonathan/skill-matcher/internal/skills"
	"github.com/jonathan/skill-matcher/internal/types"
)

// loadTaxonomy reads a taxonomy file, or returns the built-in taxonomy when path is empty.
func loadTaxonomy(path string) (*skills.Taxonomy, error) {
	if path == "" {
		return skills.DefaultTaxonomy(), nil
	}
	t, err := skills.LoadTaxonomyFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	return t, nil
}

// readResume reads and schema-validates a resume JSON file.
func readResume(path string) (*types.Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume file %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.Resume, data); err != nil {
		return nil, fmt.Errorf("resume %s: %w", path, err)
	}
	resume, err := types.DecodeResume(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse resume %s: %w", path, err)
	}
	return resume, nil
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
