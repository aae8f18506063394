package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/workflow"
)

var insightCmd = &cobra.Command{
	Use:   `insight "kpiName: intent"`,
	Short: "Generate an insight from an existing KPI",
	Long: `Generate an analytical insight from a stored KPI's data, e.g.
  kpi_agent insight "total_revenue: analyze monthly trends"
The drafted text is shown for confirmation before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runInsight,
}

func init() {
	rootCmd.AddCommand(insightCmd)
}

func runInsight(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	input, err := json.Marshal(workflow.InsightInput{Prompt: args[0]})
	if err != nil {
		return fmt.Errorf("failed to serialize input: %w", err)
	}
	run, err := rt.engine.Start(ctx, workflow.WorkflowInsight, input)
	if err != nil {
		return err
	}

	if run.Status == workflow.StatusSuspended {
		confirm, err := rt.confirmInsight(run.SuspendPayload)
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
