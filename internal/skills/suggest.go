package skills

import (
	"fmt"

	"github.com/jonathan/skill-matcher/internal/types"
)

// MaxSuggestions caps the length of a suggestion list.
const MaxSuggestions = 10

// Suggest proposes skills from every taxonomy category the candidate already
// has at least one skill in. Held skills are never suggested and each skill
// is suggested at most once. Order follows the taxonomy.
func Suggest(t *Taxonomy, current *SkillSet) []types.Suggestion {
	suggestions := []types.Suggestion{}
	if t == nil || current.Len() == 0 {
		return suggestions
	}

	offered := make(map[string]bool)
	for _, category := range t.categories {
		if !touchesCategory(category, current) {
			continue
		}
		for _, skill := range category.Skills {
			key := normalizeKey(skill)
			if current.Contains(skill) || offered[key] {
				continue
			}
			offered[key] = true
			suggestions = append(suggestions, types.Suggestion{
				Skill:    skill,
				Category: category.Name,
				Reason:   fmt.Sprintf("Complements your %s skills", category.Name),
			})
			if len(suggestions) == MaxSuggestions {
				return suggestions
			}
		}
	}
	return suggestions
}

func touchesCategory(category Category, current *SkillSet) bool {
	for _, skill := range category.Skills {
		if current.Contains(skill) {
			return true
		}
	}
	return false
}
