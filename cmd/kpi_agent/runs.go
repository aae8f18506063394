package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List workflow runs",
	RunE:  runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.pg == nil {
		return fmt.Errorf("DATABASE_URL is required to list runs")
	}

	runs, err := rt.pg.ListRuns(ctx)
	if err != nil {
		return err
	}
	rt.printer.PrintRuns(runs)
	return nil
}
