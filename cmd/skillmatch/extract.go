package main

import (
	"fmt"

	"github.com/jonathan/skill-matcher/internal/observability"
	"github.com/jonathan/skill-matcher/internal/skills"
	"github.com/jonathan/skill-matcher/internal/types"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract canonical skills from a resume",
	Long:  "Reads a resume JSON file and prints the skills found in its skills section, experience achievements and projects.",
	RunE:  runExtract,
}

var (
	extractResume   string
	extractTaxonomy string
	extractVerbose  bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractResume, "resume", "r", "", "Path to resume JSON file (required)")
	extractCmd.Flags().StringVarP(&extractTaxonomy, "taxonomy", "t", "", "Path to taxonomy JSON file (default: built-in)")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print human-readable output")

	if err := extractCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	taxonomy, err := loadTaxonomy(extractTaxonomy)
	if err != nil {
		return err
	}

	resume, err := readResume(extractResume)
	if err != nil {
		return err
	}

	names := skills.NewExtractor(taxonomy).Extract(resume).Names()
	if extractVerbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintSkills(names)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), types.ExtractResponse{Skills: names})
}
