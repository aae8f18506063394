// Package backend provides the concrete data backends the agent introspects
// and queries. DuckDB is the default: a single-file analytical store that
// speaks PostgreSQL-flavored SQL.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
	"golang.org/x/sync/errgroup"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/executor"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

// snapshotConcurrency bounds the number of tables sampled in parallel
// during schema introspection.
const snapshotConcurrency = 4

// DuckDB runs queries against a DuckDB database file (or an in-memory
// database when the path is empty). It implements executor.Driver.
type DuckDB struct {
	db *sql.DB
}

// Open opens a DuckDB database at path and verifies the connection.
func Open(path string) (*DuckDB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb database: %w", err)
	}
	return &DuckDB{db: db}, nil
}

// NewWithDB wraps an existing database handle. Used by tests to inject a
// mock connection.
func NewWithDB(db *sql.DB) *DuckDB {
	return &DuckDB{db: db}
}

// Close releases the underlying database handle.
func (d *DuckDB) Close() error {
	return d.db.Close()
}

// Run executes a query and scans every row into a generic map keyed by
// column name. Byte slices are converted to strings so results serialize
// cleanly as JSON.
func (d *DuckDB) Run(ctx context.Context, query string) (executor.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var out executor.Rows
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("result iteration failed: %w", err)
	}
	return out, nil
}

// ListTables returns the names of all user tables, excluding DuckDB's
// internal schemas.
func (d *DuckDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `SELECT table_name FROM information_schema.tables
		WHERE table_schema NOT IN ('information_schema', 'pg_catalog')
		ORDER BY table_name`

	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table listing failed: %w", err)
	}
	return names, nil
}

// ListColumns returns the declared columns of a table in ordinal order.
func (d *DuckDB) ListColumns(ctx context.Context, table string) ([]types.ColumnInfo, error) {
	const q = `SELECT column_name, data_type FROM information_schema.columns
		WHERE table_name = ? ORDER BY ordinal_position`

	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []types.ColumnInfo
	for rows.Next() {
		var col types.ColumnInfo
		if err := rows.Scan(&col.Name, &col.DeclaredType); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("column listing of %s failed: %w", table, err)
	}
	return cols, nil
}

// Snapshot introspects the named tables (all user tables when the list is
// empty) and attaches up to sampleN distinct sample values per column.
// Tables are sampled concurrently; the snapshot preserves the input order.
func (d *DuckDB) Snapshot(ctx context.Context, tables []string, sampleN int) (types.SchemaSnapshot, error) {
	if len(tables) == 0 {
		var err error
		tables, err = d.ListTables(ctx)
		if err != nil {
			return types.SchemaSnapshot{}, err
		}
	}
	if sampleN > types.MaxSampleValues {
		sampleN = types.MaxSampleValues
	}

	infos := make([]types.TableInfo, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)
	var mu sync.Mutex

	for i, table := range tables {
		g.Go(func() error {
			cols, err := d.ListColumns(gctx, table)
			if err != nil {
				return err
			}
			for j := range cols {
				samples, err := d.sampleValues(gctx, table, cols[j].Name, sampleN)
				if err != nil {
					return err
				}
				cols[j].SampleValues = samples
			}
			mu.Lock()
			infos[i] = types.TableInfo{Name: table, Schema: "main", Columns: cols}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.SchemaSnapshot{}, fmt.Errorf("schema introspection failed: %w", err)
	}
	return types.SchemaSnapshot{Tables: infos}, nil
}

// sampleValues fetches up to n distinct non-null values of a column,
// rendered as strings.
func (d *DuckDB) sampleValues(ctx context.Context, table, column string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	q := fmt.Sprintf(`SELECT DISTINCT CAST(%s AS VARCHAR) FROM %s WHERE %s IS NOT NULL LIMIT %d`,
		quoteIdent(column), quoteIdent(table), quoteIdent(column), n)

	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	var samples []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan sample of %s.%s: %w", table, column, err)
		}
		samples = append(samples, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sampling %s.%s failed: %w", table, column, err)
	}
	return samples, nil
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
