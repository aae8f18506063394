package store

import (
	"context"
	"fmt"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

// InsertInsight inserts a new insight row and fills in its surrogate id.
// kpi_name is a weak reference: no foreign key, so KPI deletion elsewhere
// never corrupts insight rows.
func (s *Store) InsertInsight(ctx context.Context, insight *types.Insight) error {
	const q = `
		INSERT INTO insights (name, description, kpi_name, formula, schedule, exec_time, alert_high, alert_low)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := s.pool.QueryRow(ctx, q,
		insight.Name, insight.Description, insight.KPIName, insight.Formula,
		insight.Schedule, insight.ExecTime, insight.AlertHigh, insight.AlertLow).
		Scan(&insight.ID)
	if err != nil {
		return fmt.Errorf("failed to insert insight %q: %w", insight.Name, err)
	}
	return nil
}

// ListInsights returns all insights, newest first.
func (s *Store) ListInsights(ctx context.Context) ([]types.Insight, error) {
	const q = `
		SELECT id, name, description, kpi_name, formula, schedule, exec_time, alert_high, alert_low
		FROM insights ORDER BY id DESC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	var insights []types.Insight
	for rows.Next() {
		var in types.Insight
		if err := rows.Scan(&in.ID, &in.Name, &in.Description, &in.KPIName, &in.Formula,
			&in.Schedule, &in.ExecTime, &in.AlertHigh, &in.AlertLow); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		insights = append(insights, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("insight listing failed: %w", err)
	}
	return insights, nil
}
