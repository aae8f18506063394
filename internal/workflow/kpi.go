package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/dialect"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/executor"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/generation"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/selection"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

// Workflow ids registered with the engine.
const (
	WorkflowKPI     = "kpi"
	WorkflowInsight = "insight"
)

const (
	defaultPreviewRows = 5
	defaultSampleRows  = 20
)

// Introspector supplies backend metadata. An empty table list means all
// user tables.
type Introspector interface {
	Snapshot(ctx context.Context, tables []string, sampleN int) (types.SchemaSnapshot, error)
}

// QueryRunner executes a query under the row-cap policy.
type QueryRunner interface {
	Execute(ctx context.Context, queryText string, sampleSize int) (executor.Rows, error)
}

// DefinitionStore persists confirmed KPI and Insight definitions. GetKPI
// returns (nil, nil) when no KPI has the given name.
type DefinitionStore interface {
	UpsertKPI(ctx context.Context, kpi types.KPI) error
	GetKPI(ctx context.Context, name string) (*types.KPI, error)
	ListKPIs(ctx context.Context) ([]types.KPI, error)
	InsertInsight(ctx context.Context, insight *types.Insight) error
}

// Toolset bundles the external collaborators the workflows call through.
// Zero values for PreviewRows/SampleRows/Now fall back to defaults.
type Toolset struct {
	Backend     Introspector
	Generator   generation.Service
	Runner      QueryRunner
	Store       DefinitionStore
	Dialect     dialect.Dialect
	PreviewRows int
	SampleRows  int
	Now         func() time.Time
}

func (t Toolset) previewRows() int {
	if t.PreviewRows > 0 {
		return t.PreviewRows
	}
	return defaultPreviewRows
}

func (t Toolset) sampleRows() int {
	if t.SampleRows > 0 {
		return t.SampleRows
	}
	return defaultSampleRows
}

func (t Toolset) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// ParsePrompt splits a "name: intent" prompt at its first colon. Both
// halves must be non-empty after trimming.
func ParsePrompt(prompt string) (name, intent string, err error) {
	head, tail, found := strings.Cut(prompt, ":")
	if !found {
		return "", "", &ValidationError{Detail: `prompt must have the form "name: intent"`}
	}
	name = strings.TrimSpace(head)
	intent = strings.TrimSpace(tail)
	if name == "" || intent == "" {
		return "", "", &ValidationError{Detail: `prompt must have the form "name: intent"`}
	}
	return name, intent, nil
}

// deriveName turns a free-text intent into a storable definition name:
// lower case, runs of non-alphanumeric characters collapsed to single
// underscores.
func deriveName(intent string) string {
	var sb strings.Builder
	pending := false
	for _, r := range strings.ToLower(intent) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	return sb.String()
}

// KPIInput starts the KPI workflow: a "table: intent" prompt.
type KPIInput struct {
	Prompt string `json:"prompt"`
}

type kpiParsed struct {
	TableName string `json:"table_name"`
	Intent    string `json:"intent"`
}

type kpiSelected struct {
	kpiParsed
	Schema  types.SchemaSnapshot `json:"schema"`
	Columns []string             `json:"columns"`
}

type kpiGenerated struct {
	kpiSelected
	Result types.GenerationResult `json:"result"`
}

type kpiPreviewed struct {
	kpiGenerated
	Preview executor.Rows `json:"preview"`
}

// KPIConfirmation is the suspend payload of the KPI workflow's
// confirmation checkpoint: everything the driving caller needs to render
// an actionable prompt.
type KPIConfirmation struct {
	ProposedName string        `json:"proposed_name"`
	TableName    string        `json:"table_name"`
	Intent       string        `json:"intent"`
	Query        string        `json:"query"`
	Explanation  string        `json:"explanation,omitempty"`
	Confidence   float64       `json:"confidence"`
	Assumptions  []string      `json:"assumptions,omitempty"`
	Preview      executor.Rows `json:"preview,omitempty"`
}

// ConfirmInput is the resume input of both confirmation checkpoints. The
// edited fields, when present, override the generated values before
// persistence.
type ConfirmInput struct {
	Confirmed   bool   `json:"confirmed"`
	EditedName  string `json:"edited_name,omitempty"`
	EditedQuery string `json:"edited_query,omitempty"`
	EditedText  string `json:"edited_text,omitempty"`
}

// KPIOutcome is the KPI workflow's final output.
type KPIOutcome struct {
	Saved  bool      `json:"saved"`
	KPI    types.KPI `json:"kpi"`
	Reason string    `json:"reason,omitempty"`
}

// NewKPIWorkflow builds the KPI-creation workflow: parse prompt, select
// columns, generate query, preview, suspend for confirmation, persist.
func NewKPIWorkflow(ts Toolset) *Definition {
	return &Definition{
		ID: WorkflowKPI,
		ValidateInput: func(raw json.RawMessage) error {
			var in KPIInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return &ValidationError{Detail: fmt.Sprintf("input does not match contract: %v", err)}
			}
			_, _, err := ParsePrompt(in.Prompt)
			return err
		},
		Steps: []Step{
			{Name: "parse_prompt", Run: ts.kpiParsePrompt},
			{Name: "select_columns", Run: ts.kpiSelectColumns},
			{Name: "generate_query", Run: ts.kpiGenerateQuery},
			{Name: "preview_query", Run: ts.kpiPreviewQuery},
			{Name: "confirm_and_save", Run: ts.kpiConfirmAndSave, ValidateResume: validateConfirm},
		},
	}
}

func validateConfirm(raw json.RawMessage) error {
	if len(raw) == 0 {
		return &ValidationError{Detail: `resume input required: {"confirmed": bool, ...}`}
	}
	var in ConfirmInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return &ValidationError{Detail: fmt.Sprintf("resume input does not match confirmation contract: %v", err)}
	}
	return nil
}

func (t Toolset) kpiParsePrompt(_ context.Context, sc *StepContext) (any, error) {
	var in KPIInput
	if err := sc.Bind(&in); err != nil {
		return nil, err
	}
	table, intent, err := ParsePrompt(in.Prompt)
	if err != nil {
		return nil, err
	}
	return kpiParsed{TableName: table, Intent: intent}, nil
}

// kpiSelectColumns resolves the prompt's table name against the
// introspected schema (case-insensitively), narrows the snapshot to that
// table and applies the column-selection heuristic.
func (t Toolset) kpiSelectColumns(ctx context.Context, sc *StepContext) (any, error) {
	var in kpiParsed
	if err := sc.Bind(&in); err != nil {
		return nil, err
	}

	snap, err := t.Backend.Snapshot(ctx, nil, types.MaxSampleValues)
	if err != nil {
		return nil, fmt.Errorf("schema introspection failed: %w", err)
	}

	table, ok := snap.Table(in.TableName)
	if !ok {
		return nil, &ValidationError{Detail: fmt.Sprintf(
			"unknown table %q; available: %s", in.TableName, strings.Join(snap.TableNames(), ", "))}
	}
	if len(table.Columns) == 0 {
		return nil, &CannotAnswerError{Reason: fmt.Sprintf("table %q has no columns", table.Name)}
	}

	columns := selection.SelectColumns(table.Name, table.Columns, nil)
	return kpiSelected{
		kpiParsed: kpiParsed{TableName: table.Name, Intent: in.Intent},
		Schema:    types.SchemaSnapshot{Tables: []types.TableInfo{table}},
		Columns:   columns,
	}, nil
}

func (t Toolset) kpiGenerateQuery(ctx context.Context, sc *StepContext) (any, error) {
	var in kpiSelected
	if err := sc.Bind(&in); err != nil {
		return nil, err
	}

	intent := in.Intent
	if len(in.Columns) > 0 {
		intent = fmt.Sprintf("%s\nRelevant columns: %s", in.Intent, strings.Join(in.Columns, ", "))
	}

	req := generation.BuildRequest(intent, in.Schema, t.Dialect, t.now())
	result, err := t.Generator.GenerateQuery(ctx, req)
	if err != nil {
		return nil, err
	}
	if !result.CanAnswer {
		return nil, &CannotAnswerError{Reason: result.Reason}
	}
	return kpiGenerated{kpiSelected: in, Result: *result}, nil
}

func (t Toolset) kpiPreviewQuery(ctx context.Context, sc *StepContext) (any, error) {
	var in kpiGenerated
	if err := sc.Bind(&in); err != nil {
		return nil, err
	}
	preview, err := t.Runner.Execute(ctx, in.Result.Query, t.previewRows())
	if err != nil {
		return nil, err
	}
	return kpiPreviewed{kpiGenerated: in, Preview: preview}, nil
}

// kpiConfirmAndSave suspends with the generated query and preview on
// first entry; on resume it applies any edits and persists the KPI. A
// declined confirmation completes the run without saving.
func (t Toolset) kpiConfirmAndSave(ctx context.Context, sc *StepContext) (any, error) {
	var in kpiPreviewed
	if err := sc.Bind(&in); err != nil {
		return nil, err
	}

	if !sc.Resumed() {
		return nil, sc.Suspend(KPIConfirmation{
			ProposedName: deriveName(in.Intent),
			TableName:    in.TableName,
			Intent:       in.Intent,
			Query:        in.Result.Query,
			Explanation:  in.Result.Explanation,
			Confidence:   in.Result.Confidence,
			Assumptions:  in.Result.Assumptions,
			Preview:      in.Preview,
		})
	}

	var confirm ConfirmInput
	if err := sc.BindResume(&confirm); err != nil {
		return nil, err
	}
	if !confirm.Confirmed {
		return KPIOutcome{Saved: false, Reason: "confirmation declined"}, nil
	}

	name := deriveName(in.Intent)
	if confirm.EditedName != "" {
		name = confirm.EditedName
	}
	query := in.Result.Query
	if confirm.EditedQuery != "" {
		query = confirm.EditedQuery
	}

	kpi := types.KPI{
		Name:        name,
		Description: in.Intent,
		Formula:     query,
		TableName:   in.TableName,
		Columns:     in.Columns,
	}
	if err := t.Store.UpsertKPI(ctx, kpi); err != nil {
		return nil, fmt.Errorf("failed to persist KPI %q: %w", name, err)
	}
	return KPIOutcome{Saved: true, KPI: kpi}, nil
}
