// Package metadata implements the Metadata Store: observability-only
// bookkeeping of IndexingRun rows, backed by Postgres. The query path never
// reads from it; it exists so operators can see what was indexed and when.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manak-ai/retrieval/internal/domain"
)

// RunStatus is the lifecycle state of one IndexingRun.
type RunStatus string

const (
	RunPending RunStatus = "pending"
	RunIndexed RunStatus = "indexed"
	RunFailed  RunStatus = "failed"
)

// IndexingRun records one attempt to index a document or repository.
type IndexingRun struct {
	ID           string
	ArtifactID   string
	SourceKind   domain.SourceKind
	Branch       string
	Status       RunStatus
	ChunkCount   int
	ErrorMessage string
	Detail       map[string]any
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Store persists IndexingRun rows to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New opens a connection pool and verifies connectivity.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Begin inserts a pending IndexingRun row and returns its ID.
func (s *Store) Begin(ctx context.Context, run IndexingRun) (string, error) {
	detailJSON, err := json.Marshal(run.Detail)
	if err != nil {
		detailJSON = []byte("{}")
	}
	const query = `
		INSERT INTO indexing_runs (id, artifact_id, source_kind, branch, status, chunk_count, error_message, detail, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.pool.Exec(ctx, query,
		run.ID, run.ArtifactID, string(run.SourceKind), run.Branch, string(RunPending),
		run.ChunkCount, run.ErrorMessage, detailJSON, run.StartedAt)
	if err != nil {
		return "", fmt.Errorf("failed to record indexing run: %w", err)
	}
	return run.ID, nil
}

// Finish updates a run with its terminal status.
func (s *Store) Finish(ctx context.Context, runID string, status RunStatus, chunkCount int, errMsg string) error {
	const query = `
		UPDATE indexing_runs
		SET status = $2, chunk_count = $3, error_message = $4, finished_at = $5
		WHERE id = $1
	`
	_, err := s.pool.Exec(ctx, query, runID, string(status), chunkCount, errMsg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to finish indexing run: %w", err)
	}
	return nil
}
