// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/executor"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/workflow"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxRowsToShow is the default number of preview rows to display
	maxRowsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintGenerationResult outputs a human-readable summary of a generated query.
func (p *Printer) PrintGenerationResult(result *types.GenerationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Confidence: %.2f\n", result.Confidence))
	if !result.CanAnswer {
		sb.WriteString("Cannot answer: " + result.Reason + "\n")
		p.printBox("GENERATION RESULT", strings.TrimRight(sb.String(), "\n"))
		return
	}
	sb.WriteString("\n")
	sb.WriteString(result.Query + "\n")
	if result.Explanation != "" {
		sb.WriteString("\n" + result.Explanation + "\n")
	}
	for _, a := range result.Assumptions {
		sb.WriteString("  - assumes: " + a + "\n")
	}
	p.printBox("GENERATED QUERY", strings.TrimRight(sb.String(), "\n"))
}

// PrintPreview outputs up to maxRowsToShow rows of a query preview.
func (p *Printer) PrintPreview(rows executor.Rows) {
	if len(rows) == 0 {
		p.printBox("PREVIEW", "(no rows)")
		return
	}

	cols := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var sb strings.Builder
	sb.WriteString(strings.Join(cols, " | ") + "\n")
	shown := min(maxRowsToShow, len(rows))
	for _, row := range rows[:shown] {
		vals := make([]string, 0, len(cols))
		for _, col := range cols {
			vals = append(vals, fmt.Sprintf("%v", row[col]))
		}
		sb.WriteString(strings.Join(vals, " | ") + "\n")
	}
	if len(rows) > shown {
		sb.WriteString(fmt.Sprintf("... and %d more rows\n", len(rows)-shown))
	}
	p.printBox(fmt.Sprintf("PREVIEW (%d rows)", len(rows)), strings.TrimRight(sb.String(), "\n"))
}

// PrintKPIConfirmation outputs the KPI confirmation checkpoint.
func (p *Printer) PrintKPIConfirmation(c *workflow.KPIConfirmation) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:       %s\n", c.ProposedName))
	sb.WriteString(fmt.Sprintf("Table:      %s\n", c.TableName))
	sb.WriteString(fmt.Sprintf("Intent:     %s\n", c.Intent))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f\n", c.Confidence))
	sb.WriteString("\n" + c.Query)
	p.printBox("CONFIRM KPI", sb.String())
	p.PrintPreview(c.Preview)
}

// PrintInsightConfirmation outputs the insight confirmation checkpoint.
func (p *Printer) PrintInsightConfirmation(c *workflow.InsightConfirmation) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", c.ProposedName))
	sb.WriteString(fmt.Sprintf("KPI:      %s\n", c.KPIName))
	sb.WriteString(fmt.Sprintf("Sampled:  %d rows\n", c.RowCount))
	sb.WriteString("\n" + c.Text)
	p.printBox("CONFIRM INSIGHT", sb.String())
}

// PrintKPIs outputs a listing of stored KPI definitions.
func (p *Printer) PrintKPIs(kpis []types.KPI) {
	if len(kpis) == 0 {
		p.printBox("KPIS", "(none defined)")
		return
	}

	var sb strings.Builder
	for i, kpi := range kpis {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s (table: %s)\n", kpi.Name, kpi.TableName))
		if kpi.Description != "" {
			sb.WriteString("  " + kpi.Description + "\n")
		}
		sb.WriteString("  " + kpi.Formula + "\n")
	}
	p.printBox(fmt.Sprintf("KPIS (%d)", len(kpis)), strings.TrimRight(sb.String(), "\n"))
}

// PrintRuns outputs a listing of workflow runs.
func (p *Printer) PrintRuns(runs []workflow.Run) {
	if len(runs) == 0 {
		p.printBox("RUNS", "(none)")
		return
	}

	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%s  %-10s %-9s step %d\n", run.ID, run.WorkflowID, run.Status, run.StepIndex))
	}
	p.printBox(fmt.Sprintf("RUNS (%d)", len(runs)), strings.TrimRight(sb.String(), "\n"))
}
