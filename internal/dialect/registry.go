// Package dialect maps backend identifiers to their syntax rules: identifier
// quoting, row-cap clause, case-insensitive comparison and free-form guidance
// injected into generation requests. Adding a backend means adding one registry
// entry, not new control flow.
package dialect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

// QuoteStyle is how a dialect quotes identifiers.
type QuoteStyle int

const (
	QuoteNone QuoteStyle = iota
	QuoteDouble
	QuoteBacktick
	QuoteBracket
)

// Dialect holds the syntax rules for one query backend.
type Dialect struct {
	Backend           string
	DocumentStore     bool
	Quote             QuoteStyle
	RowCapClause      string // fmt template with a single %d, empty when the driver enforces the cap
	CaseInsensitiveOp string
	Rules             string
}

var registry = map[string]Dialect{
	"postgresql": {
		Backend:           "postgresql",
		Quote:             QuoteDouble,
		RowCapClause:      "LIMIT %d",
		CaseInsensitiveOp: "ILIKE",
		Rules:             "Use standard PostgreSQL syntax. Prefer ILIKE for text comparisons. Cast with :: only when necessary.",
	},
	"mysql": {
		Backend:           "mysql",
		Quote:             QuoteBacktick,
		RowCapClause:      "LIMIT %d",
		CaseInsensitiveOp: "LIKE",
		Rules:             "Use MySQL syntax. LIKE is case-insensitive under default collations. Quote identifiers with backticks.",
	},
	"mssql": {
		Backend:           "mssql",
		Quote:             QuoteBracket,
		RowCapClause:      "OFFSET 0 ROWS FETCH NEXT %d ROWS ONLY",
		CaseInsensitiveOp: "LIKE",
		Rules:             "Use T-SQL syntax. Row caps use OFFSET/FETCH, which requires an ORDER BY clause. Quote identifiers with square brackets.",
	},
	"databricks": {
		Backend:           "databricks",
		Quote:             QuoteBacktick,
		RowCapClause:      "LIMIT %d",
		CaseInsensitiveOp: "ILIKE",
		Rules:             "Use Databricks SQL (Spark SQL) syntax. Quote identifiers with backticks. Dates use the date/timestamp functions, not string math.",
	},
	"sqlite": {
		Backend:           "sqlite",
		Quote:             QuoteDouble,
		RowCapClause:      "LIMIT %d",
		CaseInsensitiveOp: "LIKE",
		Rules:             "Use SQLite syntax. LIKE is case-insensitive for ASCII. Avoid RIGHT JOIN and other unsupported constructs.",
	},
	"duckdb": {
		Backend:           "duckdb",
		Quote:             QuoteDouble,
		RowCapClause:      "LIMIT %d",
		CaseInsensitiveOp: "ILIKE",
		Rules:             "Use DuckDB syntax, which closely follows PostgreSQL. Prefer ILIKE for text comparisons.",
	},
	"oracle": {
		Backend:           "oracle",
		Quote:             QuoteDouble,
		RowCapClause:      "FETCH FIRST %d ROWS ONLY",
		CaseInsensitiveOp: "LIKE",
		Rules:             "Use Oracle SQL syntax. Wrap both sides of case-insensitive comparisons in UPPER(). Row caps use FETCH FIRST.",
	},
	"mongodb": {
		Backend:           "mongodb",
		DocumentStore:     true,
		Quote:             QuoteNone,
		RowCapClause:      "",
		CaseInsensitiveOp: "$regex with the i option",
		Rules:             "Produce a MongoDB aggregation pipeline as a JSON array of stages. Reference fields without quoting obligations. The driver enforces the row cap.",
	},
}

// fallback is the designated default for unknown backend identifiers:
// relational, double-quoted identifiers.
var fallback = Dialect{
	Backend:           "default",
	Quote:             QuoteDouble,
	RowCapClause:      "LIMIT %d",
	CaseInsensitiveOp: "LIKE",
	Rules:             "Use ANSI SQL syntax with double-quoted identifiers.",
}

// Resolve maps a backend identifier to its dialect entry. It is a total
// function: unknown identifiers resolve to the default relational dialect
// rather than failing.
func Resolve(backend string) Dialect {
	if d, ok := registry[strings.ToLower(strings.TrimSpace(backend))]; ok {
		return d
	}
	return fallback
}

// Backends returns all registered backend identifiers, sorted.
func Backends() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// QuoteIdent quotes a single identifier segment per the dialect's style.
// Embedded quote characters are escaped by doubling.
func (d Dialect) QuoteIdent(ident string) string {
	switch d.Quote {
	case QuoteDouble:
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	case QuoteBacktick:
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	case QuoteBracket:
		return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
	default:
		return ident
	}
}

// Qualify joins the present catalog/schema/table levels of t with the
// dialect's separator, quoting each segment. Absent levels are omitted.
func (d Dialect) Qualify(t types.TableInfo) string {
	var parts []string
	for _, level := range []string{t.Catalog, t.Schema, t.Name} {
		if level != "" {
			parts = append(parts, d.QuoteIdent(level))
		}
	}
	return strings.Join(parts, ".")
}

// LimitClause renders the dialect's row-cap clause for n rows. Empty for
// dialects whose driver enforces the cap.
func (d Dialect) LimitClause(n int) string {
	if d.RowCapClause == "" {
		return ""
	}
	return fmt.Sprintf(d.RowCapClause, n)
}
