// Package main provides the kpi_agent CLI: natural-language KPI and
// insight definition with a mandatory human confirmation checkpoint.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool
	flagYes     bool
)

var rootCmd = &cobra.Command{
	Use:   "kpi_agent",
	Short: "Natural-language KPI and insight definition agent",
	Long: "kpi_agent turns one-line natural-language prompts into validated, dialect-specific\n" +
		"queries and persisted KPI/insight definitions, with a confirmation checkpoint\n" +
		"before anything is written to storage.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed progress")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Confirm checkpoints without prompting")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
