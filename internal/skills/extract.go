package skills

import (
	"strings"

	"github.com/jonathan/skill-matcher/internal/types"
)

// Extractor derives a candidate's skill set from a resume using one taxonomy snapshot.
type Extractor struct {
	taxonomy *Taxonomy
}

// NewExtractor creates an extractor over t. A nil t uses the built-in taxonomy.
func NewExtractor(t *Taxonomy) *Extractor {
	if t == nil {
		t = DefaultTaxonomy()
	}
	return &Extractor{taxonomy: t}
}

// Extract collects skills from the resume's skills section, experience
// achievements and projects. Missing sections contribute nothing.
func (e *Extractor) Extract(resume *types.Resume) *SkillSet {
	set := NewSkillSet()
	if resume == nil {
		return set
	}

	switch resume.Skills.Kind {
	case types.SkillsList:
		for _, name := range resume.Skills.List {
			set.Add(name)
		}
	case types.SkillsCategorized:
		for _, category := range resume.Skills.Categories {
			for _, name := range category.Skills {
				set.Add(name)
			}
		}
	}

	for _, exp := range resume.Experience {
		for _, achievement := range exp.Achievements {
			for _, name := range e.ExtractFromText(achievement) {
				set.Add(name)
			}
		}
	}

	for _, project := range resume.Projects {
		for _, tech := range project.Technologies {
			set.Add(tech)
		}
		for _, name := range e.ExtractFromText(project.Description) {
			set.Add(name)
		}
	}

	return set
}

// ExtractFromText returns every taxonomy skill that occurs in text as a
// case-insensitive substring, in taxonomy order and canonical spelling.
func (e *Extractor) ExtractFromText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lower := strings.ToLower(text)
	var found []string
	for i, needle := range e.taxonomy.lowered {
		if strings.Contains(lower, needle) {
			found = append(found, e.taxonomy.flat[i])
		}
	}
	return found
}
