package main

import (
	"fmt"

	"github.com/jonathan/skill-matcher/internal/observability"
	"github.com/spf13/cobra"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect and validate skill taxonomies",
}

var taxonomyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a taxonomy file",
	Long:  "Checks a taxonomy JSON file against the taxonomy schema and the category rules, then prints its version.",
	RunE:  runTaxonomyValidate,
}

var taxonomyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a taxonomy",
	Long:  "Prints the built-in taxonomy, or the one in --file, as JSON.",
	RunE:  runTaxonomyShow,
}

var (
	taxonomyFile    string
	taxonomyVerbose bool
)

func init() {
	taxonomyValidateCmd.Flags().StringVarP(&taxonomyFile, "file", "f", "", "Path to taxonomy JSON file (required)")
	if err := taxonomyValidateCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	taxonomyShowCmd.Flags().StringVarP(&taxonomyFile, "file", "f", "", "Path to taxonomy JSON file (default: built-in)")
	taxonomyShowCmd.Flags().BoolVarP(&taxonomyVerbose, "verbose", "v", false, "Print a human-readable summary")

	taxonomyCmd.AddCommand(taxonomyValidateCmd, taxonomyShowCmd)
	rootCmd.AddCommand(taxonomyCmd)
}

func runTaxonomyValidate(cmd *cobra.Command, _ []string) error {
	t, err := loadTaxonomy(taxonomyFile)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d categories, %d skills, version %s)\n",
		taxonomyFile, len(t.Categories()), len(t.Skills()), t.Version())
	return err
}

func runTaxonomyShow(cmd *cobra.Command, _ []string) error {
	t, err := loadTaxonomy(taxonomyFile)
	if err != nil {
		return err
	}
	if taxonomyVerbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintTaxonomy(t)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), t)
}
