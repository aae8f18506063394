package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/workflow"
)

var kpiCmd = &cobra.Command{
	Use:   `kpi "table: intent"`,
	Short: "Define a KPI from a natural-language prompt",
	Long: `Define a KPI from a one-line prompt of the form "table: intent", e.g.
  kpi_agent kpi "orders: average order value"
The generated query and a preview are shown for confirmation before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runKPI,
}

func init() {
	rootCmd.AddCommand(kpiCmd)
}

func runKPI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	input, err := json.Marshal(workflow.KPIInput{Prompt: args[0]})
	if err != nil {
		return fmt.Errorf("failed to serialize input: %w", err)
	}
	run, err := rt.engine.Start(ctx, workflow.WorkflowKPI, input)
	if err != nil {
		return err
	}

	if run.Status == workflow.StatusSuspended {
		confirm, err := rt.confirmKPI(run.SuspendPayload)
		if err != nil {
			return err
		}
		run, err = rt.resumeWith(ctx, run.ID, confirm)
		if err != nil {
			return err
		}
	}
	return rt.reportOutcome(run)
}
