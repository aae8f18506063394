package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/executor"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/generation"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

// InsightInput starts the insight workflow: a "kpiName: intent" prompt.
type InsightInput struct {
	Prompt string `json:"prompt"`
}

type insightParsed struct {
	KPIName string `json:"kpi_name"`
	Intent  string `json:"intent"`
}

type insightLooked struct {
	insightParsed
	KPI types.KPI `json:"kpi"`
}

type insightSampled struct {
	insightLooked
	Rows executor.Rows `json:"rows"`
}

type insightDrafted struct {
	insightLooked
	RowCount int    `json:"row_count"`
	Text     string `json:"text"`
}

// InsightConfirmation is the suspend payload of the insight workflow's
// confirmation checkpoint.
type InsightConfirmation struct {
	ProposedName string `json:"proposed_name"`
	KPIName      string `json:"kpi_name"`
	Intent       string `json:"intent"`
	Text         string `json:"text"`
	RowCount     int    `json:"row_count"`
}

// InsightOutcome is the insight workflow's final output.
type InsightOutcome struct {
	Saved   bool          `json:"saved"`
	Insight types.Insight `json:"insight"`
	Reason  string        `json:"reason,omitempty"`
}

// NewInsightWorkflow builds the insight-generation workflow: parse the
// "kpiName: intent" prompt, look up the KPI, sample its data, draft
// insight text, suspend for confirmation, persist.
func NewInsightWorkflow(ts Toolset) *Definition {
	return &Definition{
		ID: WorkflowInsight,
		ValidateInput: func(raw json.RawMessage) error {
			var in InsightInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return &ValidationError{Detail: fmt.Sprintf("input does not match contract: %v", err)}
			}
			_, _, err := ParsePrompt(in.Prompt)
			return err
		},
		Steps: []Step{
			{Name: "parse_prompt", Run: ts.insightParsePrompt},
			{Name: "lookup_kpi", Run: ts.insightLookupKPI},
			{Name: "sample_data", Run: ts.insightSampleData},
			{Name: "generate_insight", Run: ts.insightGenerate},
			{Name: "confirm_and_save", Run: ts.insightConfirmAndSave, ValidateResume: validateConfirm},
		},
	}
}

func (t Toolset) insightParsePrompt(_ context.Context, sc *StepContext) (any, error) {
	var in InsightInput
	if err := sc.Bind(&in); err != nil {
		return nil, err
	}
	kpiName, intent, err := ParsePrompt(in.Prompt)
	if err != nil {
		return nil, err
	}
	return insightParsed{KPIName: kpiName, Intent: intent}, nil
}

// insightLookupKPI fails with *KpiNotFoundError carrying the available
// names when the prompt references a KPI that does not exist.
func (t Toolset) insightLookupKPI(ctx context.Context, sc *StepContext) (any, error) {
	var in insightParsed
	if err := sc.Bind(&in); err != nil {
		return nil, err
	}

	kpi, err := t.Store.GetKPI(ctx, in.KPIName)
	if err != nil {
		return nil, fmt.Errorf("KPI lookup failed: %w", err)
	}
	if kpi == nil {
		all, err := t.Store.ListKPIs(ctx)
		if err != nil {
			return nil, fmt.Errorf("KPI listing failed: %w", err)
		}
		names := make([]string, 0, len(all))
		for _, k := range all {
			names = append(names, k.Name)
		}
		return nil, &KpiNotFoundError{Name: in.KPIName, Available: names}
	}
	return insightLooked{insightParsed: in, KPI: *kpi}, nil
}

func (t Toolset) insightSampleData(ctx context.Context, sc *StepContext) (any, error) {
	var in insightLooked
	if err := sc.Bind(&in); err != nil {
		return nil, err
	}
	rows, err := t.Runner.Execute(ctx, in.KPI.Formula, t.sampleRows())
	if err != nil {
		return nil, err
	}
	return insightSampled{insightLooked: in, Rows: rows}, nil
}

func (t Toolset) insightGenerate(ctx context.Context, sc *StepContext) (any, error) {
	var in insightSampled
	if err := sc.Bind(&in); err != nil {
		return nil, err
	}

	prompt, err := generation.BuildInsightPrompt(in.KPI, in.Intent, in.Rows)
	if err != nil {
		return nil, err
	}
	text, err := t.Generator.GenerateInsight(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return insightDrafted{insightLooked: in.insightLooked, RowCount: len(in.Rows), Text: text}, nil
}

// insightConfirmAndSave suspends with the drafted text on first entry; on
// resume it applies any edits and persists the insight.
func (t Toolset) insightConfirmAndSave(ctx context.Context, sc *StepContext) (any, error) {
	var in insightDrafted
	if err := sc.Bind(&in); err != nil {
		return nil, err
	}

	if !sc.Resumed() {
		return nil, sc.Suspend(InsightConfirmation{
			ProposedName: deriveName(in.Intent),
			KPIName:      in.KPI.Name,
			Intent:       in.Intent,
			Text:         in.Text,
			RowCount:     in.RowCount,
		})
	}

	var confirm ConfirmInput
	if err := sc.BindResume(&confirm); err != nil {
		return nil, err
	}
	if !confirm.Confirmed {
		return InsightOutcome{Saved: false, Reason: "confirmation declined"}, nil
	}

	name := deriveName(in.Intent)
	if confirm.EditedName != "" {
		name = confirm.EditedName
	}
	text := in.Text
	if confirm.EditedText != "" {
		text = confirm.EditedText
	}

	kpiName := in.KPI.Name
	insight := types.Insight{
		Name:        name,
		Description: in.Intent,
		KPIName:     &kpiName,
		Formula:     text,
	}
	if err := t.Store.InsertInsight(ctx, &insight); err != nil {
		return nil, fmt.Errorf("failed to persist insight %q: %w", name, err)
	}
	return InsightOutcome{Saved: true, Insight: insight}, nil
}
