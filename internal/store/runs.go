package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/workflow"
)

// CreateRun inserts a new run record.
func (s *Store) CreateRun(ctx context.Context, run *workflow.Run) error {
	const q = `
		INSERT INTO workflow_runs
			(id, workflow_id, step_index, status, state, suspend_payload, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, q,
		run.ID, run.WorkflowID, run.StepIndex, string(run.Status),
		run.State, run.SuspendPayload, run.ErrorMessage,
		run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads a run by id, returning *workflow.UnknownRunError when it
// does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*workflow.Run, error) {
	const q = `
		SELECT id, workflow_id, step_index, status, state, suspend_payload, error_message, created_at, updated_at
		FROM workflow_runs WHERE id = $1`

	var run workflow.Run
	var status string
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&run.ID, &run.WorkflowID, &run.StepIndex, &status,
		&run.State, &run.SuspendPayload, &run.ErrorMessage,
		&run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &workflow.UnknownRunError{RunID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	run.Status = workflow.Status(status)
	return &run, nil
}

// UpdateRun persists the run's current state.
func (s *Store) UpdateRun(ctx context.Context, run *workflow.Run) error {
	const q = `
		UPDATE workflow_runs
		SET step_index = $2, status = $3, state = $4, suspend_payload = $5,
			error_message = $6, updated_at = $7
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q,
		run.ID, run.StepIndex, string(run.Status),
		run.State, run.SuspendPayload, run.ErrorMessage, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", run.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &workflow.UnknownRunError{RunID: run.ID}
	}
	return nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]workflow.Run, error) {
	const q = `
		SELECT id, workflow_id, step_index, status, state, suspend_payload, error_message, created_at, updated_at
		FROM workflow_runs ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []workflow.Run
	for rows.Next() {
		var run workflow.Run
		var status string
		if err := rows.Scan(
			&run.ID, &run.WorkflowID, &run.StepIndex, &status,
			&run.State, &run.SuspendPayload, &run.ErrorMessage,
			&run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Status = workflow.Status(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run listing failed: %w", err)
	}
	return runs, nil
}
