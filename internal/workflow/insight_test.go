package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/dialect"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

func newInsightToolset(store *fakeStore, gen *fakeGenerator, runner *fakeRunner) Toolset {
	return Toolset{
		Backend:   &fakeBackend{snap: ordersSnapshot()},
		Generator: gen,
		Runner:    runner,
		Store:     store,
		Dialect:   dialect.Resolve("duckdb"),
	}
}

func storeWithKPI(t *testing.T) *fakeStore {
	t.Helper()
	store := newFakeStore()
	require.NoError(t, store.UpsertKPI(context.Background(), types.KPI{
		Name:      "total_revenue",
		Formula:   "SELECT SUM(amount) FROM orders",
		TableName: "orders",
	}))
	return store
}

func TestInsightWorkflow_SuspendResumeRoundTrip(t *testing.T) {
	store := storeWithKPI(t)
	gen := &fakeGenerator{text: "Revenue is trending upward month over month."}
	runner := &fakeRunner{}
	engine := NewEngine(NewMemStore(), nil)
	engine.Register(NewInsightWorkflow(newInsightToolset(store, gen, runner)))

	input, _ := json.Marshal(InsightInput{Prompt: "total_revenue: analyze monthly trends"})
	run, err := engine.Start(context.Background(), WorkflowInsight, input)
	require.NoError(t, err)
	require.Equal(t, StatusSuspended, run.Status)

	var payload InsightConfirmation
	require.NoError(t, json.Unmarshal(run.SuspendPayload, &payload))
	assert.Equal(t, "total_revenue", payload.KPIName)
	assert.Equal(t, "Revenue is trending upward month over month.", payload.Text)
	assert.Equal(t, 20, payload.RowCount, "sampling uses the default sample size")

	require.Equal(t, []string{"SELECT SUM(amount) FROM orders"}, runner.queries)
	assert.Contains(t, gen.lastPrompt, "total_revenue")
	assert.Contains(t, gen.lastPrompt, "analyze monthly trends")

	resumed, err := engine.Resume(context.Background(), run.ID, json.RawMessage(`{"confirmed":true}`))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resumed.Status)

	var outcome InsightOutcome
	require.NoError(t, json.Unmarshal(resumed.State, &outcome))
	assert.True(t, outcome.Saved)

	require.Len(t, store.insights, 1)
	saved := store.insights[0]
	assert.Equal(t, "analyze_monthly_trends", saved.Name)
	assert.Equal(t, "Revenue is trending upward month over month.", saved.Formula)
	require.NotNil(t, saved.KPIName)
	assert.Equal(t, "total_revenue", *saved.KPIName)
}

func TestInsightWorkflow_EditedTextAndName(t *testing.T) {
	store := storeWithKPI(t)
	gen := &fakeGenerator{text: "draft text"}
	engine := NewEngine(NewMemStore(), nil)
	engine.Register(NewInsightWorkflow(newInsightToolset(store, gen, &fakeRunner{})))

	input, _ := json.Marshal(InsightInput{Prompt: "total_revenue: analyze monthly trends"})
	run, err := engine.Start(context.Background(), WorkflowInsight, input)
	require.NoError(t, err)

	resume := `{"confirmed":true,"edited_name":"monthly_trend","edited_text":"final text"}`
	_, err = engine.Resume(context.Background(), run.ID, json.RawMessage(resume))
	require.NoError(t, err)

	require.Len(t, store.insights, 1)
	assert.Equal(t, "monthly_trend", store.insights[0].Name)
	assert.Equal(t, "final text", store.insights[0].Formula)
}

func TestInsightWorkflow_UnknownKPIListsAvailableNames(t *testing.T) {
	store := storeWithKPI(t)
	engine := NewEngine(NewMemStore(), nil)
	engine.Register(NewInsightWorkflow(newInsightToolset(store, &fakeGenerator{}, &fakeRunner{})))

	input, _ := json.Marshal(InsightInput{Prompt: "conversion_rate: weekly movement"})
	_, err := engine.Start(context.Background(), WorkflowInsight, input)

	var notFound *KpiNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "conversion_rate", notFound.Name)
	assert.Equal(t, []string{"total_revenue"}, notFound.Available)
}

func TestInsightWorkflow_DeclinedConfirmationSavesNothing(t *testing.T) {
	store := storeWithKPI(t)
	gen := &fakeGenerator{text: "draft"}
	engine := NewEngine(NewMemStore(), nil)
	engine.Register(NewInsightWorkflow(newInsightToolset(store, gen, &fakeRunner{})))

	input, _ := json.Marshal(InsightInput{Prompt: "total_revenue: analyze monthly trends"})
	run, err := engine.Start(context.Background(), WorkflowInsight, input)
	require.NoError(t, err)

	resumed, err := engine.Resume(context.Background(), run.ID, json.RawMessage(`{"confirmed":false}`))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resumed.Status)
	assert.Empty(t, store.insights)
}
