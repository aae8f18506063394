// Package store persists workflow runs and confirmed KPI/Insight
// definitions in PostgreSQL. It implements the workflow engine's RunStore
// and the workflows' DefinitionStore over one shared connection pool.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a PostgreSQL-backed run and definition store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a connection pool for databaseURL and verifies it.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
