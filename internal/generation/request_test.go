package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/dialect"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

func sampleSnapshot() types.SchemaSnapshot {
	return types.SchemaSnapshot{
		Tables: []types.TableInfo{
			{
				Name:        "orders",
				Schema:      "main",
				Description: "customer orders",
				Columns: []types.ColumnInfo{
					{Name: "id", DeclaredType: "bigint"},
					{Name: "amount", DeclaredType: "decimal(10,2)", SampleValues: []string{"19.99", "42.00"}},
					{Name: "region", DeclaredType: "varchar", SampleValues: []string{"emea", "apac"}},
				},
			},
		},
	}
}

func TestBuildRequest_PromptIsDeterministicAndGrounded(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	req := BuildRequest("average order value", sampleSnapshot(), dialect.Resolve("postgresql"), now)

	prompt, err := req.Prompt()
	require.NoError(t, err)

	again, err := req.Prompt()
	require.NoError(t, err)
	assert.Equal(t, prompt, again)

	assert.Contains(t, prompt, "average order value")
	assert.Contains(t, prompt, `TABLE "main"."orders"`)
	assert.Contains(t, prompt, "amount decimal(10,2)")
	assert.Contains(t, prompt, "examples: 19.99, 42.00")
	assert.Contains(t, prompt, "2025-06-01T12:00:00Z")
	assert.Contains(t, prompt, "tables_used")
	assert.Contains(t, prompt, "Never invent literals")
	assert.Contains(t, prompt, "ILIKE")
}

func TestBuildRequest_DocumentStorePrompt(t *testing.T) {
	snap := types.SchemaSnapshot{
		Tables: []types.TableInfo{
			{Name: "events", Columns: []types.ColumnInfo{{Name: "kind", DeclaredType: "string"}}},
		},
	}
	req := BuildRequest("count events by kind", snap, dialect.Resolve("mongodb"), time.Now())

	prompt, err := req.Prompt()
	require.NoError(t, err)
	assert.Contains(t, prompt, "COLLECTION events")
	assert.Contains(t, prompt, "collections_used")
	assert.NotContains(t, prompt, "tables_used")
	assert.Contains(t, prompt, "the driver enforces it")
}

func TestBuildRequest_NormalizesNowToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2025, 6, 1, 14, 0, 0, 0, loc)
	req := BuildRequest("x", sampleSnapshot(), dialect.Resolve("duckdb"), now)
	assert.Equal(t, time.UTC, req.Now.Location())
}
