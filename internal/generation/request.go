// Package generation implements the dialect-aware query-generation subsystem:
// assembling a schema-grounded generation request for the external LLM service
// and validating its structured response against the grounding rules.
package generation

import (
	"fmt"
	"strings"
	"time"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/dialect"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/prompts"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

// DefaultRowCap is the row cap the generation service is instructed to
// apply when the intent does not override it.
const DefaultRowCap = 100

// Request carries everything the generation service needs to produce a
// query: the user intent, the schema the query may reference, the resolved
// dialect, and the request timestamp (for relative date intents).
type Request struct {
	Intent  string
	Schema  types.SchemaSnapshot
	Dialect dialect.Dialect
	Now     time.Time
}

// BuildRequest assembles a generation request. Serialization is fully
// deterministic: the same inputs always produce the same prompt.
func BuildRequest(intent string, schema types.SchemaSnapshot, d dialect.Dialect, now time.Time) Request {
	return Request{Intent: intent, Schema: schema, Dialect: d, Now: now.UTC()}
}

// Prompt renders the request into the structured prompt handed to the
// generation service. The grounding instructions it embeds are a hard
// contract, not advisory: literals only from sample values, columns by
// semantic proximity, dialect-valid syntax only.
func (r Request) Prompt() (string, error) {
	tmpl, err := prompts.Get("generation.json", "query_generation")
	if err != nil {
		return "", err
	}

	refsField := "tables_used"
	capRule := fmt.Sprintf("Always append %q to the query unless the request explicitly asks for a different row count.", r.Dialect.LimitClause(DefaultRowCap))
	if r.Dialect.DocumentStore {
		refsField = "collections_used"
		capRule = "Do not add a row cap; the driver enforces it."
	}

	return prompts.Format(tmpl, map[string]string{
		"Backend":   r.Dialect.Backend,
		"Intent":    r.Intent,
		"Now":       r.Now.Format(time.RFC3339),
		"Schema":    renderSchema(r.Schema, r.Dialect),
		"Rules":     r.Dialect.Rules,
		"CaseOp":    r.Dialect.CaseInsensitiveOp,
		"CapRule":   capRule,
		"RefsField": refsField,
	}), nil
}

// renderSchema serializes a snapshot into the prompt's schema section,
// one table block at a time, in snapshot order.
func renderSchema(schema types.SchemaSnapshot, d dialect.Dialect) string {
	var sb strings.Builder
	for i, table := range schema.Tables {
		if i > 0 {
			sb.WriteString("\n")
		}
		kind := "TABLE"
		if d.DocumentStore {
			kind = "COLLECTION"
		}
		sb.WriteString(fmt.Sprintf("%s %s", kind, d.Qualify(table)))
		if table.Description != "" {
			sb.WriteString(" -- " + table.Description)
		}
		sb.WriteString("\n")
		for _, col := range table.Columns {
			sb.WriteString(fmt.Sprintf("  %s %s", col.Name, col.DeclaredType))
			if col.Description != "" {
				sb.WriteString(" -- " + col.Description)
			}
			if len(col.SampleValues) > 0 {
				sb.WriteString(fmt.Sprintf(" (examples: %s)", strings.Join(col.SampleValues, ", ")))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
