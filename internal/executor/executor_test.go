package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/dialect"
)

type fakeDriver struct {
	lastQuery string
	rows      Rows
	err       error
}

func (f *fakeDriver) Run(_ context.Context, query string) (Rows, error) {
	f.lastQuery = query
	return f.rows, f.err
}

func TestPrepare_AppendsCapWhenAbsent(t *testing.T) {
	d := dialect.Resolve("postgresql")
	got := Prepare("SELECT * FROM orders", d, 5)
	assert.Equal(t, "SELECT * FROM orders LIMIT 5", got)
}

func TestPrepare_ExistingCapLeftByteIdentical(t *testing.T) {
	d := dialect.Resolve("postgresql")

	cases := []struct {
		query string
		want  string
	}{
		{"SELECT * FROM orders LIMIT 10", "SELECT * FROM orders LIMIT 10"},
		{"SELECT * FROM orders limit 10;", "SELECT * FROM orders limit 10"},
		{"select * from orders LiMiT 3  ;  ", "select * from orders LiMiT 3"},
		{"SELECT * FROM orders FETCH FIRST 7 ROWS ONLY", "SELECT * FROM orders FETCH FIRST 7 ROWS ONLY"},
		{"SELECT TOP 10 * FROM orders", "SELECT TOP 10 * FROM orders"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Prepare(tc.query, d, 5), "query %q", tc.query)
	}
}

func TestPrepare_StripsTerminatorBeforeAppending(t *testing.T) {
	d := dialect.Resolve("mysql")
	got := Prepare("SELECT * FROM orders;\n", d, 3)
	assert.Equal(t, "SELECT * FROM orders LIMIT 3", got)
}

func TestPrepare_ColumnNamedLimityDoesNotCount(t *testing.T) {
	d := dialect.Resolve("postgresql")
	// "limits" is not a LIMIT clause; the cap must still be appended.
	got := Prepare("SELECT limits FROM quota", d, 5)
	assert.Equal(t, "SELECT limits FROM quota LIMIT 5", got)
}

func TestPrepare_DocumentStorePassThrough(t *testing.T) {
	d := dialect.Resolve("mongodb")
	pipeline := `[{"$group": {"_id": "$region", "total": {"$sum": "$amount"}}}]`
	assert.Equal(t, pipeline, Prepare(pipeline, d, 5))
}

func TestExecute_DelegatesPreparedQuery(t *testing.T) {
	drv := &fakeDriver{rows: Rows{{"n": int64(1)}}}
	ex := New(drv, dialect.Resolve("duckdb"))

	rows, err := ex.Execute(context.Background(), "SELECT 1;", 5)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 LIMIT 5", drv.lastQuery)
	assert.Len(t, rows, 1)
}

func TestExecute_WrapsDriverError(t *testing.T) {
	cause := errors.New("relation missing")
	drv := &fakeDriver{err: cause}
	ex := New(drv, dialect.Resolve("postgresql"))

	_, err := ex.Execute(context.Background(), "SELECT * FROM nope", 5)
	require.Error(t, err)

	var execErr *Error
	require.True(t, errors.As(err, &execErr))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, execErr.Query, "LIMIT 5")
}
