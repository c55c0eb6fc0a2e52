// Package main provides the skillmatch CLI: skill extraction, scoring and the REST API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillmatch",
	Short: "Resume skill extraction and job matching",
	Long:  "skillmatch extracts canonical skills from resumes, scores them against job skill lists, suggests related skills and serves the matching REST API.",
	// Command errors are printed once by main.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
