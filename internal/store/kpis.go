package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

// UpsertKPI inserts a KPI or replaces the definition with the same name.
func (s *Store) UpsertKPI(ctx context.Context, kpi types.KPI) error {
	const q = `
		INSERT INTO kpis (name, description, formula, table_name, columns)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			formula = EXCLUDED.formula,
			table_name = EXCLUDED.table_name,
			columns = EXCLUDED.columns,
			updated_at = now()`

	_, err := s.pool.Exec(ctx, q, kpi.Name, kpi.Description, kpi.Formula, kpi.TableName, kpi.Columns)
	if err != nil {
		return fmt.Errorf("failed to upsert KPI %q: %w", kpi.Name, err)
	}
	return nil
}

// GetKPI loads a KPI by name, returning (nil, nil) when none exists.
func (s *Store) GetKPI(ctx context.Context, name string) (*types.KPI, error) {
	const q = `SELECT name, description, formula, table_name, columns FROM kpis WHERE name = $1`

	var kpi types.KPI
	err := s.pool.QueryRow(ctx, q, name).Scan(
		&kpi.Name, &kpi.Description, &kpi.Formula, &kpi.TableName, &kpi.Columns)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load KPI %q: %w", name, err)
	}
	return &kpi, nil
}

// ListKPIs returns all KPI definitions ordered by name.
func (s *Store) ListKPIs(ctx context.Context) ([]types.KPI, error) {
	const q = `SELECT name, description, formula, table_name, columns FROM kpis ORDER BY name`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list KPIs: %w", err)
	}
	defer rows.Close()

	var kpis []types.KPI
	for rows.Next() {
		var kpi types.KPI
		if err := rows.Scan(&kpi.Name, &kpi.Description, &kpi.Formula, &kpi.TableName, &kpi.Columns); err != nil {
			return nil, fmt.Errorf("failed to scan KPI: %w", err)
		}
		kpis = append(kpis, kpi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("KPI listing failed: %w", err)
	}
	return kpis, nil
}
