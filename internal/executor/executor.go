// Package executor applies backend-agnostic execution policy to a query
// before delegating to the backend driver: it strips a trailing statement
// terminator and appends the dialect's default row cap unless the author
// already specified one. Author-specified caps are authoritative and are
// never rewritten.
package executor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/dialect"
)

// Rows is the opaque result shape returned by backend drivers: one map per
// row, keyed by column name. No normalization happens beyond what the
// driver itself performs.
type Rows []map[string]any

// Driver executes a query against the target backend.
type Driver interface {
	Run(ctx context.Context, query string) (Rows, error)
}

// Error wraps a backend execution failure with the query that caused it.
type Error struct {
	Query string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// capPattern detects an existing row-limiting clause, case-insensitively.
var capPattern = regexp.MustCompile(`(?i)\b(limit\s+\d+|fetch\s+(first|next)\s+\d+|top\s+(\(\s*)?\d+)\b`)

// Executor runs queries through a backend driver under the row-cap policy.
type Executor struct {
	driver  Driver
	dialect dialect.Dialect
}

// New creates an executor for the given driver and dialect.
func New(driver Driver, d dialect.Dialect) *Executor {
	return &Executor{driver: driver, dialect: d}
}

// Execute applies the row-cap policy to queryText and runs it. Driver
// failures are wrapped in *Error; the query itself is never retried here.
func (e *Executor) Execute(ctx context.Context, queryText string, sampleSize int) (Rows, error) {
	prepared := Prepare(queryText, e.dialect, sampleSize)
	rows, err := e.driver.Run(ctx, prepared)
	if err != nil {
		return nil, &Error{Query: prepared, Cause: err}
	}
	return rows, nil
}

// Prepare strips a trailing statement terminator and appends the dialect's
// row-cap clause for sampleSize rows when the query has no limiting clause
// of its own. Queries that already carry one are returned unmodified (two
// caps is a syntax error on most backends, or silently takes the tighter
// one). Document-store queries pass through untouched: their drivers
// enforce the cap.
func Prepare(queryText string, d dialect.Dialect, sampleSize int) string {
	trimmed := strings.TrimRight(queryText, "; \t\r\n")

	if d.DocumentStore || d.RowCapClause == "" {
		return trimmed
	}
	if capPattern.MatchString(trimmed) {
		return trimmed
	}
	return trimmed + " " + d.LimitClause(sampleSize)
}
