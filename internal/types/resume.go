// Package types provides type definitions for structured data used throughout the skill-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SkillsKind identifies which shape a resume's skills field arrived in.
type SkillsKind int

const (
	// SkillsNone means the field was absent, null, or of an unrecognized shape.
	SkillsNone SkillsKind = iota
	// SkillsList is a flat list of skill names (or objects carrying a name).
	SkillsList
	// SkillsCategorized is a mapping from category label to a list of skill names.
	SkillsCategorized
)

// SkillCategory is one labelled group of a categorized skills field.
type SkillCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// SkillsField is the resume skills section. Exactly one of List or
// Categories is meaningful, selected by Kind.
type SkillsField struct {
	Kind       SkillsKind
	List       []string
	Categories []SkillCategory // JSON key order is preserved
}

// SkillList builds a flat skills field.
func SkillList(names ...string) SkillsField {
	return SkillsField{Kind: SkillsList, List: names}
}

// CategorizedSkills builds a categorized skills field.
func CategorizedSkills(categories ...SkillCategory) SkillsField {
	return SkillsField{Kind: SkillsCategorized, Categories: categories}
}

// ExperienceEntry is one position in a resume's work history.
type ExperienceEntry struct {
	Title        string   `json:"title,omitempty"`
	Company      string   `json:"company,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// Project is one entry of a resume's project list.
type Project struct {
	Name         string   `json:"name,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// Resume is the loosely structured resume record. Every field is optional.
type Resume struct {
	ID         uuid.UUID         `json:"id,omitzero"`
	UserID     uuid.UUID         `json:"user_id,omitzero"`
	Summary    string            `json:"summary,omitempty"`
	Skills     SkillsField       `json:"skills"`
	Experience []ExperienceEntry `json:"experience,omitempty"`
	Projects   []Project         `json:"projects,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitzero"`
}

// DecodeResume parses a resume document. Only a document that is not a JSON
// object is an error; malformed optional fields decode as absent.
func DecodeResume(data []byte) (*Resume, error) {
	var r Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UnmarshalJSON decodes a resume permissively.
func (r *Resume) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("resume must be a JSON object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("resume must be a JSON object")
	}

	*r = Resume{}
	decodeOptional(raw["id"], &r.ID)
	decodeOptional(raw["user_id"], &r.UserID)
	decodeOptional(raw["summary"], &r.Summary)
	decodeOptional(raw["updated_at"], &r.UpdatedAt)

	if msg, ok := raw["skills"]; ok {
		_ = r.Skills.UnmarshalJSON(msg)
	}
	r.Experience = DecodeExperience(raw["experience"])
	r.Projects = DecodeProjects(raw["projects"])
	return nil
}

// UnmarshalJSON resolves the list-or-mapping ambiguity of the skills field.
// Unrecognized shapes leave the field empty rather than failing.
func (f *SkillsField) UnmarshalJSON(data []byte) error {
	*f = SkillsField{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		f.Kind = SkillsList
		f.List = skillNames(items)
	case '{':
		categories, err := decodeOrderedCategories(trimmed)
		if err != nil {
			return nil
		}
		f.Kind = SkillsCategorized
		f.Categories = categories
	}
	return nil
}

// MarshalJSON writes the field back in the shape it was read in.
func (f SkillsField) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case SkillsList:
		list := f.List
		if list == nil {
			list = []string{}
		}
		return json.Marshal(list)
	case SkillsCategorized:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, c := range f.Categories {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(c.Name)
			if err != nil {
				return nil, err
			}
			skills := c.Skills
			if skills == nil {
				skills = []string{}
			}
			value, err := json.Marshal(skills)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// DecodeExperience decodes an experience list, skipping entries that are not objects.
func DecodeExperience(data json.RawMessage) []ExperienceEntry {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	entries := make([]ExperienceEntry, 0, len(items))
	for _, item := range items {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(item, &raw); err != nil || raw == nil {
			continue
		}
		var e ExperienceEntry
		decodeOptional(raw["title"], &e.Title)
		decodeOptional(raw["company"], &e.Company)
		e.Achievements = stringList(raw["achievements"])
		entries = append(entries, e)
	}
	return entries
}

// DecodeProjects decodes a project list. technologies may be a single string
// or a list of strings.
func DecodeProjects(data json.RawMessage) []Project {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	projects := make([]Project, 0, len(items))
	for _, item := range items {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(item, &raw); err != nil || raw == nil {
			continue
		}
		var p Project
		decodeOptional(raw["name"], &p.Name)
		decodeOptional(raw["description"], &p.Description)

		var single string
		if err := json.Unmarshal(raw["technologies"], &single); err == nil {
			p.Technologies = []string{single}
		} else {
			p.Technologies = stringList(raw["technologies"])
		}
		projects = append(projects, p)
	}
	return projects
}

// decodeOrderedCategories walks a JSON object token by token so category
// order matches the document. Non-list category values are dropped.
func decodeOrderedCategories(data []byte) ([]SkillCategory, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var categories []SkillCategory
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}

		var items []json.RawMessage
		if err := json.Unmarshal(value, &items); err != nil {
			continue
		}
		categories = append(categories, SkillCategory{Name: name, Skills: skillNames(items)})
	}
	return categories, nil
}

// skillNames keeps plain strings and the name of {"name": ...} objects.
func skillNames(items []json.RawMessage) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			names = append(names, s)
			continue
		}
		var named struct {
			Name *string `json:"name"`
		}
		if err := json.Unmarshal(item, &named); err == nil && named.Name != nil {
			names = append(names, *named.Name)
		}
	}
	return names
}

// stringList decodes a list and keeps only its string elements.
func stringList(data json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func decodeOptional(data json.RawMessage, dst any) {
	if len(data) == 0 || strings.TrimSpace(string(data)) == "null" {
		return
	}
	_ = json.Unmarshal(data, dst)
}
