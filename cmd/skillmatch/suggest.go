package main

import (
	"fmt"

	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/observability"
	"github.com/jonathan/skill-matcher/internal/skills"
	"github.com/jonathan/skill-matcher/internal/types"
	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest related skills",
	Long:  "Suggests taxonomy skills from every category the given skills already touch.",
	RunE:  runSuggest,
}

var (
	suggestSkills   string
	suggestTaxonomy string
	suggestVerbose  bool
)

func init() {
	suggestCmd.Flags().StringVarP(&suggestSkills, "skills", "s", "", "Comma-separated skills already held (required)")
	suggestCmd.Flags().StringVarP(&suggestTaxonomy, "taxonomy", "t", "", "Path to taxonomy JSON file (default: built-in)")
	suggestCmd.Flags().BoolVarP(&suggestVerbose, "verbose", "v", false, "Print human-readable output")

	if err := suggestCmd.MarkFlagRequired("skills"); err != nil {
		panic(fmt.Sprintf("failed to mark skills flag as required: %v", err))
	}

	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	taxonomy, err := loadTaxonomy(suggestTaxonomy)
	if err != nil {
		return err
	}

	current := skills.NewSkillSet(matching.ParseSkillQuery(suggestSkills)...)
	suggestions := skills.Suggest(taxonomy, current)

	if suggestVerbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintSuggestions(suggestions)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), types.SuggestResponse{Suggestions: suggestions})
}
