package main

import (
	"github.com/spf13/cobra"
)

var kpisCmd = &cobra.Command{
	Use:   "kpis",
	Short: "List stored KPI definitions",
	RunE:  runKPIs,
}

func init() {
	rootCmd.AddCommand(kpisCmd)
}

func runKPIs(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	kpis, err := rt.defs.ListKPIs(ctx)
	if err != nil {
		return err
	}
	rt.printer.PrintKPIs(kpis)
	return nil
}
