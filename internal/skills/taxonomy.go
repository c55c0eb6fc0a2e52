// Package skills extracts normalized skill sets from resumes and scores them against job skill lists.
package skills

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/jonathan/skill-matcher/internal/schemas"
)

// Category is a named, ordered group of canonical skill names.
type Category struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// Taxonomy is an immutable snapshot of the skill reference data.
// Methods return copies; a Taxonomy is safe for concurrent use.
type Taxonomy struct {
	categories []Category
	flat       []string // canonical names, first occurrence wins
	lowered    []string // flat, lower-cased, same indexes
	version    string
}

type taxonomyDocument struct {
	Categories []Category `json:"categories"`
}

// NewTaxonomy builds a taxonomy from ordered categories. Category names and
// skill names must be non-empty after trimming.
func NewTaxonomy(categories []Category) (*Taxonomy, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("taxonomy has no categories")
	}

	t := &Taxonomy{categories: make([]Category, 0, len(categories))}
	seenCategory := make(map[string]bool, len(categories))
	seenSkill := make(map[string]bool)

	for i, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category %d has an empty name", i)
		}
		if seenCategory[name] {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		seenCategory[name] = true

		list := make([]string, 0, len(c.Skills))
		for j, skill := range c.Skills {
			skill = strings.TrimSpace(skill)
			if skill == "" {
				return nil, fmt.Errorf("category %q: skill %d is empty", name, j)
			}
			list = append(list, skill)

			key := normalizeKey(skill)
			if !seenSkill[key] {
				seenSkill[key] = true
				t.flat = append(t.flat, skill)
				t.lowered = append(t.lowered, key)
			}
		}
		t.categories = append(t.categories, Category{Name: name, Skills: list})
	}

	t.version = fingerprint(t.categories)
	return t, nil
}

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(defaultCategories())
	if err != nil {
		panic(fmt.Sprintf("built-in taxonomy is invalid: %v", err))
	}
	return t
}

func defaultCategories() []Category {
	return []Category{
		{Name: "programming", Skills: []string{"JavaScript", "Python", "Java", "C++", "C#", "PHP", "Ruby", "Go", "Rust", "Swift", "Kotlin"}},
		{Name: "frontend", Skills: []string{"React", "Vue.js", "Angular", "HTML", "CSS", "TypeScript", "jQuery", "Bootstrap", "Tailwind"}},
		{Name: "backend", Skills: []string{"Node.js", "Express", "Django", "Flask", "Spring", "Laravel", "Rails", "ASP.NET"}},
		{Name: "databases", Skills: []string{"MySQL", "PostgreSQL", "MongoDB", "Redis", "SQLite", "Oracle", "SQL Server"}},
		{Name: "cloud", Skills: []string{"AWS", "Azure", "Google Cloud", "Docker", "Kubernetes", "Terraform"}},
		{Name: "tools", Skills: []string{"Git", "Jenkins", "Jira", "Postman", "VS Code", "IntelliJ"}},
		{Name: "soft", Skills: []string{"Leadership", "Communication", "Problem Solving", "Team Work", "Project Management"}},
	}
}

// ParseTaxonomy parses a taxonomy document of the form
// {"categories": [{"name": "...", "skills": ["..."]}]}.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var doc taxonomyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy JSON: %w", err)
	}
	return NewTaxonomy(doc.Categories)
}

// LoadTaxonomyFile reads, schema-validates and parses a taxonomy file.
func LoadTaxonomyFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.Taxonomy, data); err != nil {
		return nil, fmt.Errorf("taxonomy file %s: %w", path, err)
	}
	return ParseTaxonomy(data)
}

// Categories returns the categories in taxonomy order.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Skills: append([]string(nil), c.Skills...)}
	}
	return out
}

// Skills returns every canonical skill name once, in taxonomy order.
func (t *Taxonomy) Skills() []string {
	return append([]string(nil), t.flat...)
}

// Version identifies the taxonomy content. Equal content yields equal versions.
func (t *Taxonomy) Version() string {
	return t.version
}

// MarshalJSON writes the taxonomy in the document form ParseTaxonomy reads.
func (t *Taxonomy) MarshalJSON() ([]byte, error) {
	return json.Marshal(taxonomyDocument{Categories: t.categories})
}

func fingerprint(categories []Category) string {
	data, _ := json.Marshal(categories)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Store holds the process-wide taxonomy. Readers take a snapshot with Load
// and keep using it for the whole computation; Swap installs a new snapshot
// without disturbing readers of the old one.
type Store struct {
	current atomic.Pointer[Taxonomy]
}

// NewStore creates a store holding t.
func NewStore(t *Taxonomy) *Store {
	s := &Store{}
	s.current.Store(t)
	return s
}

// Load returns the current snapshot.
func (s *Store) Load() *Taxonomy {
	return s.current.Load()
}

// Swap installs t and returns the previous snapshot.
func (s *Store) Swap(t *Taxonomy) *Taxonomy {
	return s.current.Swap(t)
}

// ReloadFile loads a taxonomy file and swaps it in. The current snapshot is
// kept when the file is unreadable or invalid.
func (s *Store) ReloadFile(path string) (*Taxonomy, error) {
	t, err := LoadTaxonomyFile(path)
	if err != nil {
		return nil, err
	}
	s.Swap(t)
	return t, nil
}
