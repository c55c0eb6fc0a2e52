package skills

import "strings"

// SkillSet is an insertion-ordered set of skill names compared
// case-insensitively. The first spelling added for a name is the one kept.
type SkillSet struct {
	names []string
	index map[string]struct{}
}

// NewSkillSet builds a set from names in order.
func NewSkillSet(names ...string) *SkillSet {
	s := &SkillSet{index: make(map[string]struct{}, len(names))}
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// Add inserts name unless an equal name (ignoring case and surrounding
// whitespace) is already present. Blank names are ignored.
func (s *SkillSet) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	key := normalizeKey(name)
	if _, ok := s.index[key]; ok {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[key] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Contains reports whether name is in the set, ignoring case.
func (s *SkillSet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[normalizeKey(name)]
	return ok
}

// Len returns the number of distinct skills.
func (s *SkillSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the skills in first-seen order.
func (s *SkillSet) Names() []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s.names...)
}

func normalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
