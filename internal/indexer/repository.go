package indexer

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/manak-ai/retrieval/internal/domain"
	"github.com/manak-ai/retrieval/internal/ingestion"
	"github.com/manak-ai/retrieval/internal/metadata"
	"github.com/manak-ai/retrieval/internal/overview"
	"github.com/manak-ai/retrieval/internal/vectorstore"
)

var repositoryExtensions = map[string]bool{
	".java": true, ".kt": true, ".xml": true, ".yml": true, ".yaml": true,
	".properties": true, ".md": true, ".txt": true, ".py": true, ".js": true,
	".ts": true, ".json": true, ".html": true, ".css": true, ".gradle": true,
	".groovy": true, ".pom": true, ".sql": true, ".sh": true, ".bash": true,
	".dockerfile": true,
}

// IndexedFile describes one file that was successfully chunked and written.
type IndexedFile struct {
	Path     string
	Chunks   int
	IDPrefix string
}

// RepositoryResult describes the outcome of indexing one repository.
type RepositoryResult struct {
	ArtifactID   string
	Name         string
	IndexedFiles []IndexedFile
	OverviewID   string
}

// RepositoryIndexer implements Repository.index per the Indexer component.
type RepositoryIndexer struct {
	chunker  *ingestion.RepositoryChunker
	overview *overview.RepositoryOverviewBuilder
	coord    *vectorstore.Coordinator
	runs     RunRecorder
	logger   *slog.Logger
}

// NewRepositoryIndexer builds a RepositoryIndexer.
func NewRepositoryIndexer(chunker *ingestion.RepositoryChunker, ob *overview.RepositoryOverviewBuilder, coord *vectorstore.Coordinator, runs RunRecorder, logger *slog.Logger) *RepositoryIndexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepositoryIndexer{chunker: chunker, overview: ob, coord: coord, runs: runs, logger: logger}
}

// Index enumerates an archive's indexable files, chunks and writes each one,
// then builds and writes the repository overview.
func (idx *RepositoryIndexer) Index(ctx context.Context, repoID, name, branch string, files map[string][]byte) RepositoryResult {
	runID := idx.beginRun(ctx, repoID, domain.SourceRepository, branch)

	readmePath, hasReadme := overview.ReadmePath(files)

	indexed := make([]IndexedFile, 0, len(files))
	totalChunks := 0

	for path, raw := range files {
		if isDotfileOrDir(path) {
			continue
		}
		if hasReadme && path == readmePath {
			// A README feeds the overview only; it is never chunked (§4.6, §8 scenario 2).
			continue
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !repositoryExtensions[ext] && !isDockerfile(path) {
			continue
		}

		chunks := idx.chunker.ChunkFile(repoID, branch, path, raw)
		if len(chunks) == 0 {
			idx.logger.Warn("file produced no chunks, skipping", "repoID", repoID, "path", path)
			continue
		}

		records := make([]vectorstore.Record, len(chunks))
		idPrefix := repoID + ":" + path + ":chunk:"
		for i, c := range chunks {
			records[i] = vectorstore.Record{ID: c.ID, Content: c.Content, Meta: repoChunkMeta(c)}
		}
		if err := idx.coord.WriteChunks(ctx, records); err != nil {
			idx.logger.Error("failed to write chunks for file, skipping", "repoID", repoID, "path", path, "error", err)
			continue
		}

		indexed = append(indexed, IndexedFile{Path: path, Chunks: len(chunks), IDPrefix: idPrefix})
		totalChunks += len(chunks)
	}

	ov := idx.overview.Build(ctx, repoID, branch, files)
	if err := idx.coord.WriteOverview(ctx, ov.ID, ov.Content, repoOverviewMeta(ov)); err != nil {
		idx.logger.Error("failed to write repository overview, returning partial result", "repoID", repoID, "error", err)
	}

	status := metadata.RunIndexed
	if len(indexed) == 0 {
		status = metadata.RunFailed
	}
	idx.finishRun(ctx, runID, status, totalChunks, "")

	return RepositoryResult{
		ArtifactID:   repoID,
		Name:         name,
		IndexedFiles: indexed,
		OverviewID:   ov.ID,
	}
}

func isDotfileOrDir(path string) bool {
	if strings.HasSuffix(path, "/") {
		return true
	}
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

func isDockerfile(path string) bool {
	return strings.EqualFold(filepath.Base(path), "dockerfile")
}

func (idx *RepositoryIndexer) beginRun(ctx context.Context, artifactID string, kind domain.SourceKind, branch string) string {
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

func (idx *RepositoryIndexer) finishRun(ctx context.Context, runID string, status metadata.RunStatus, chunkCount int, errMsg string) {
	if idx.runs == nil || runID == "" {
		return
	}
	if err := idx.runs.Finish(ctx, runID, status, chunkCount, errMsg); err != nil {
		idx.logger.Warn("failed to record indexing run finish", "runID", runID, "error", err)
	}
}

func repoOverviewMeta(ov domain.Overview) map[string]any {
	return map[string]any{
		"type":          "overview",
		"repository_id": ov.Meta.ArtifactID,
		"branch":        ov.Meta.Branch,
		"source":        ov.Meta.Source,
	}
}

func repoChunkMeta(c domain.Chunk) map[string]any {
	return map[string]any{
		"type":          "chunk",
		"repository_id": c.Meta.ArtifactID,
		"file_path":     c.Meta.FilePath,
		"file_name":     c.Meta.FileName,
		"mime_type":     c.Meta.MimeType,
		"chunk_index":   c.Meta.ChunkIndex,
		"total_chunks":  c.Meta.TotalChunks,
		"branch":        c.Meta.Branch,
	}
}
