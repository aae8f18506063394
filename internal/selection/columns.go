// Package selection narrows a table's full column list down to the columns
// relevant to a user intent when none were named explicitly. It is a bounded
// heuristic, not a relevance guarantee: classification is by declared column
// type against a fixed allow-list, never by column-name pattern matching.
package selection

import (
	"strings"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

// numericTypes is the declared-type allow-list, keyed by normalized type
// name (lower case, precision stripped).
var numericTypes = map[string]struct{}{
	"tinyint":          {},
	"smallint":         {},
	"int":              {},
	"integer":          {},
	"int2":             {},
	"int4":             {},
	"int8":             {},
	"bigint":           {},
	"hugeint":          {},
	"numeric":          {},
	"decimal":          {},
	"real":             {},
	"float":            {},
	"float4":           {},
	"float8":           {},
	"double":           {},
	"double precision": {},
	"money":            {},
}

// fallbackCount is how many leading columns are kept when a table has no
// numeric columns at all.
const fallbackCount = 3

// IsNumeric reports whether a declared column type is in the numeric
// allow-list. Precision suffixes such as DECIMAL(10,2) are ignored.
func IsNumeric(declaredType string) bool {
	_, ok := numericTypes[normalizeType(declaredType)]
	return ok
}

// SelectColumns picks the column set handed to the generation subsystem.
// Explicit caller-supplied columns pass through unchanged. Otherwise all
// numeric columns are selected, qualified with the table name; if none
// exist, the first fallbackCount columns in schema order are used. A table
// with zero columns yields an empty selection.
func SelectColumns(table string, columns []types.ColumnInfo, explicit []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	if len(columns) == 0 {
		return nil
	}

	var numeric []string
	for _, col := range columns {
		if IsNumeric(col.DeclaredType) {
			numeric = append(numeric, table+"."+col.Name)
		}
	}
	if len(numeric) > 0 {
		return numeric
	}

	n := min(fallbackCount, len(columns))
	selected := make([]string, 0, n)
	for _, col := range columns[:n] {
		selected = append(selected, table+"."+col.Name)
	}
	return selected
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if idx := strings.Index(t, "("); idx >= 0 {
		t = t[:idx]
	}
	return strings.Join(strings.Fields(t), " ")
}
