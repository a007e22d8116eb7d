// Package indexer orchestrates the write path: chunking, overview
// generation, and persistence to the Vector Index Coordinator, with
// best-effort IndexingRun bookkeeping in the Metadata Store.
package indexer

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/manak-ai/retrieval/internal/apperror"
	"github.com/manak-ai/retrieval/internal/domain"
	"github.com/manak-ai/retrieval/internal/ingestion"
	"github.com/manak-ai/retrieval/internal/metadata"
	"github.com/manak-ai/retrieval/internal/overview"
	"github.com/manak-ai/retrieval/internal/vectorstore"
)

var documentExtensions = map[string]bool{
	".md": true, ".txt": true, ".pdf": true, ".docx": true, ".html": true,
}

// SupportedDocumentExtension reports whether fileName's extension is one the
// Document Indexer accepts. Exposed so the HTTP ingress can reject an
// unsupported type synchronously, before dispatching async indexing work.
func SupportedDocumentExtension(fileName string) bool {
	return documentExtensions[strings.ToLower(filepath.Ext(fileName))]
}

// RunRecorder records IndexingRun bookkeeping; satisfied by *metadata.Store.
// A nil RunRecorder disables bookkeeping entirely.
type RunRecorder interface {
	Begin(ctx context.Context, run metadata.IndexingRun) (string, error)
	Finish(ctx context.Context, runID string, status metadata.RunStatus, chunkCount int, errMsg string) error
}

// DocumentIndexer implements Document.index per the Indexer component.
type DocumentIndexer struct {
	chunker  *ingestion.DocumentChunker
	overview *overview.DocumentOverviewBuilder
	coord    *vectorstore.Coordinator
	runs     RunRecorder
	logger   *slog.Logger
}

// NewDocumentIndexer builds a DocumentIndexer.
func NewDocumentIndexer(chunker *ingestion.DocumentChunker, ob *overview.DocumentOverviewBuilder, coord *vectorstore.Coordinator, runs RunRecorder, logger *slog.Logger) *DocumentIndexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentIndexer{chunker: chunker, overview: ob, coord: coord, runs: runs, logger: logger}
}

// Result describes the outcome of indexing one document.
type Result struct {
	ArtifactID string
	ChunkCount int
	OverviewID string
}

// Index validates, chunks, builds an overview, and persists a document.
func (idx *DocumentIndexer) Index(ctx context.Context, artifactID, fileName string, fileBytes []byte) (Result, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !documentExtensions[ext] {
		return Result{}, apperror.New(apperror.Validation, "unsupported document type: "+ext)
	}

	runID := idx.beginRun(ctx, artifactID, domain.SourceDocument, "")

	text, err := ingestion.DecodeWithFallback(fileBytes)
	if err != nil {
		idx.finishRun(ctx, runID, metadata.RunFailed, 0, err.Error())
		return Result{}, apperror.Wrap(apperror.Decode, "failed to decode document bytes", err)
	}

	chunks := idx.chunker.Chunk(artifactID, domain.ChunkMeta{FileName: fileName}, text)
	if len(chunks) == 0 {
		idx.finishRun(ctx, runID, metadata.RunFailed, 0, "empty content")
		return Result{}, apperror.New(apperror.Validation, "document produced no chunks")
	}

	ov := idx.overview.Build(ctx, artifactID, chunks)
	if err := idx.coord.WriteOverview(ctx, ov.ID, ov.Content, overviewMeta(ov)); err != nil {
		idx.finishRun(ctx, runID, metadata.RunFailed, 0, err.Error())
		idx.logger.Error("failed to write document overview", "artifactID", artifactID, "error", err)
		return Result{}, apperror.Wrap(apperror.StoreWrite, "failed to write overview", err)
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Record{ID: c.ID, Content: c.Content, Meta: chunkMeta(c)}
	}
	if err := idx.coord.WriteChunks(ctx, records); err != nil {
		idx.finishRun(ctx, runID, metadata.RunFailed, 0, err.Error())
		idx.logger.Error("failed to write document chunks", "artifactID", artifactID, "error", err)
		return Result{}, apperror.Wrap(apperror.StoreWrite, "failed to write chunks", err)
	}

	idx.finishRun(ctx, runID, metadata.RunIndexed, len(chunks), "")
	return Result{ArtifactID: artifactID, ChunkCount: len(chunks), OverviewID: ov.ID}, nil
}

func (idx *DocumentIndexer) beginRun(ctx context.Context, artifactID string, kind domain.SourceKind, branch string) string {
	if idx.runs == nil {
		return ""
	}
	id, err := idx.runs.Begin(ctx, metadata.IndexingRun{
		ID:         uuid.NewString(),
		ArtifactID: artifactID,
		SourceKind: kind,
		Branch:     branch,
		StartedAt:  time.Now(),
	})
	if err != nil {
		idx.logger.Warn("failed to record indexing run start", "artifactID", artifactID, "error", err)
		return ""
	}
	return id
}

func (idx *DocumentIndexer) finishRun(ctx context.Context, runID string, status metadata.RunStatus, chunkCount int, errMsg string) {
	if idx.runs == nil || runID == "" {
		return
	}
	if err := idx.runs.Finish(ctx, runID, status, chunkCount, errMsg); err != nil {
		idx.logger.Warn("failed to record indexing run finish", "runID", runID, "error", err)
	}
}

func overviewMeta(ov domain.Overview) map[string]any {
	return map[string]any{
		"type":   "overview",
		"doc_id": ov.Meta.ArtifactID,
		"branch": ov.Meta.Branch,
		"source": ov.Meta.Source,
	}
}

func chunkMeta(c domain.Chunk) map[string]any {
	return map[string]any{
		"type":         "chunk",
		"doc_id":       c.Meta.ArtifactID,
		"file_name":    c.Meta.FileName,
		"file_path":    c.Meta.FilePath,
		"chunk_index":  c.Meta.ChunkIndex,
		"total_chunks": c.Meta.TotalChunks,
		"branch":       c.Meta.Branch,
	}
}
