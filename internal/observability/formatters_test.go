package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/executor"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/workflow"
)

func TestPrintGenerationResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintGenerationResult(&types.GenerationResult{
		CanAnswer:   true,
		Query:       "SELECT AVG(amount) FROM orders",
		Explanation: "mean order value",
		Confidence:  0.9,
		Assumptions: []string{"single currency"},
	})
	output := buf.String()

	assert.Contains(t, output, "GENERATED QUERY")
	assert.Contains(t, output, "SELECT AVG(amount) FROM orders")
	assert.Contains(t, output, "0.90")
	assert.Contains(t, output, "single currency")
}

func TestPrintGenerationResult_CannotAnswer(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintGenerationResult(&types.GenerationResult{Reason: "no pricing data"})

	assert.Contains(t, buf.String(), "no pricing data")
}

func TestPrintGenerationResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintGenerationResult(nil)

	assert.Empty(t, buf.String())
}

func TestPrintPreview(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPreview(executor.Rows{
		{"region": "emea", "total": 42.5},
		{"region": "apac", "total": 13.0},
	})
	output := buf.String()

	assert.Contains(t, output, "PREVIEW (2 rows)")
	assert.Contains(t, output, "emea")
	assert.Contains(t, output, "region | total")
}

func TestPrintPreview_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPreview(nil)

	assert.Contains(t, buf.String(), "(no rows)")
}

func TestPrintKPIConfirmation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintKPIConfirmation(&workflow.KPIConfirmation{
		ProposedName: "average_order_value",
		TableName:    "orders",
		Intent:       "average order value",
		Query:        "SELECT AVG(amount) FROM orders",
		Confidence:   0.9,
		Preview:      executor.Rows{{"avg": 21.2}},
	})
	output := buf.String()

	assert.Contains(t, output, "CONFIRM KPI")
	assert.Contains(t, output, "average_order_value")
	assert.Contains(t, output, "21.2")
}

func TestPrintInsightConfirmation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintInsightConfirmation(&workflow.InsightConfirmation{
		ProposedName: "monthly_trend",
		KPIName:      "total_revenue",
		Text:         "Revenue is trending upward.",
		RowCount:     20,
	})
	output := buf.String()

	assert.Contains(t, output, "CONFIRM INSIGHT")
	assert.Contains(t, output, "total_revenue")
	assert.Contains(t, output, "20 rows")
}

func TestPrintKPIs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintKPIs([]types.KPI{
		{Name: "aov", TableName: "orders", Formula: "SELECT AVG(amount) FROM orders"},
	})
	output := buf.String()

	assert.Contains(t, output, "KPIS (1)")
	assert.Contains(t, output, "aov (table: orders)")
}

func TestPrintKPIs_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintKPIs(nil)

	assert.Contains(t, buf.String(), "(none defined)")
}
