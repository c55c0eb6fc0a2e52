// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/skill-matcher/internal/skills"
	"github.com/jonathan/skill-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}

// writeList writes up to maxItemsToShow bullets and a remainder line.
func writeList(sb *strings.Builder, items []string) {
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintSkills outputs an extracted skill set.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSkills(names []string) {
	if len(names) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO SKILLS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d skills:\n\n", len(names)))
	for _, line := range wrap(names, boxWidth-7) {
		sb.WriteString("  " + line + "\n")
	}

	p.printBox("EXTRACTED SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap joins names with ", " into lines no longer than width.
func wrap(names []string, width int) []string {
	var lines []string
	var line string
	for _, name := range names {
		switch {
		case line == "":
			line = name
		case len(line)+2+len(name) > width:
			lines = append(lines, line+",")
			line = name
		default:
			line += ", " + name
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// PrintMatch outputs a match score with matched and missing skills.
func (p *Printer) PrintMatch(result types.MatchResult) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:    %d / 100\n", result.Score))
	sb.WriteString(fmt.Sprintf("Required: %d of %d matched\n",
		len(result.MatchedRequired), len(result.MatchedRequired)+len(result.MissingRequired)))
	sb.WriteString(fmt.Sprintf("Preferred: %d of %d matched\n",
		len(result.MatchedPreferred), len(result.MatchedPreferred)+len(result.MissingPreferred)))

	if len(result.MissingRequired) > 0 {
		sb.WriteString("\nMissing required:\n")
		writeList(&sb, result.MissingRequired)
	}
	if len(result.MissingPreferred) > 0 {
		sb.WriteString("\nMissing preferred:\n")
		writeList(&sb, result.MissingPreferred)
	}

	p.printBox("SKILL MATCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSuggestions outputs suggested skills grouped by category.
func (p *Printer) PrintSuggestions(suggestions []types.Suggestion) {
	if len(suggestions) == 0 {
		p.printBox("SKILL SUGGESTIONS", "Nothing to suggest")
		return
	}

	var sb strings.Builder
	current := ""
	for _, s := range suggestions {
		if s.Category != current {
			if current != "" {
				sb.WriteString("\n")
			}
			sb.WriteString(s.Category + ":\n")
			current = s.Category
		}
		sb.WriteString(fmt.Sprintf("  • %s\n", s.Skill))
	}

	p.printBox("SKILL SUGGESTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTaxonomy outputs category sizes and the taxonomy version.
func (p *Printer) PrintTaxonomy(t *skills.Taxonomy) {
	if t == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Version:  %s\n", t.Version()))
	sb.WriteString(fmt.Sprintf("Skills:   %d\n\n", len(t.Skills())))
	for _, c := range t.Categories() {
		sb.WriteString(fmt.Sprintf("%-14s %3d  %s\n", c.Name, len(c.Skills), strings.Join(c.Skills, ", ")))
	}

	p.printBox("SKILL TAXONOMY", strings.TrimSuffix(sb.String(), "\n"))
}
