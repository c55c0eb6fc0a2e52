package main

import (
	"fmt"

	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/observability"
	"github.com/jonathan/skill-matcher/internal/skills"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against job skill lists",
	Long:  "Extracts skills from a resume and scores them against comma-separated required and preferred skill lists (70/30 weighting).",
	RunE:  runScore,
}

var (
	scoreResume    string
	scoreRequired  string
	scorePreferred string
	scoreTaxonomy  string
	scoreVerbose   bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreResume, "resume", "r", "", "Path to resume JSON file (required)")
	scoreCmd.Flags().StringVar(&scoreRequired, "required", "", "Comma-separated required skills")
	scoreCmd.Flags().StringVar(&scorePreferred, "preferred", "", "Comma-separated preferred skills")
	scoreCmd.Flags().StringVarP(&scoreTaxonomy, "taxonomy", "t", "", "Path to taxonomy JSON file (default: built-in)")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print human-readable output")

	if err := scoreCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	taxonomy, err := loadTaxonomy(scoreTaxonomy)
	if err != nil {
		return err
	}

	resume, err := readResume(scoreResume)
	if err != nil {
		return err
	}

	candidate := skills.NewExtractor(taxonomy).Extract(resume)
	result := skills.Match(candidate, matching.ParseSkillQuery(scoreRequired), matching.ParseSkillQuery(scorePreferred))

	if scoreVerbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintMatch(result)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), result)
}
