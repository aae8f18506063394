package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/workflow"
)

var (
	resumeDecline     bool
	resumeEditedName  string
	resumeEditedQuery string
	resumeEditedText  string
)

var resumeCmd = &cobra.Command{
	Use:   "resume <run-id>",
	Short: "Resume a suspended workflow run",
	Long: `Resume a run suspended at its confirmation checkpoint, possibly from a
different process than the one that started it. Requires DATABASE_URL so
the run record is durable.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().BoolVar(&resumeDecline, "no", false, "Decline the confirmation")
	resumeCmd.Flags().StringVar(&resumeEditedName, "edited-name", "", "Override the proposed name")
	resumeCmd.Flags().StringVar(&resumeEditedQuery, "edited-query", "", "Override the generated query (KPI runs)")
	resumeCmd.Flags().StringVar(&resumeEditedText, "edited-text", "", "Override the drafted text (insight runs)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.pg == nil {
		return fmt.Errorf("DATABASE_URL is required to resume runs across processes")
	}

	confirm := workflow.ConfirmInput{
		Confirmed:   !resumeDecline,
		EditedName:  resumeEditedName,
		EditedQuery: resumeEditedQuery,
		EditedText:  resumeEditedText,
	}
	run, err := rt.resumeWith(ctx, args[0], confirm)
	if err != nil {
		return err
	}
	return rt.reportOutcome(run)
}
