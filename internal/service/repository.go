package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/manak-ai/retrieval/internal/apperror"
	"github.com/manak-ai/retrieval/internal/client"
	"github.com/manak-ai/retrieval/internal/domain"
	"github.com/manak-ai/retrieval/internal/indexer"
	"github.com/manak-ai/retrieval/internal/retriever"
)

// RepositoryFetcher fetches a repository's metadata and branch archive,
// satisfied by *client.RepositoryServiceClient.
type RepositoryFetcher interface {
	GetRepository(ctx context.Context, id string) (client.RepositoryMetadata, error)
	DownloadDefaultBranch(ctx context.Context, id string) ([]byte, error)
	DownloadBranch(ctx context.Context, id, branch string) ([]byte, error)
}

// RepositoryService is the process singleton facade for the repository
// artifact class: Add (async ingest), OverviewQuery, ChunkQuery.
type RepositoryService struct {
	fetcher  RepositoryFetcher
	indexer  *indexer.RepositoryIndexer
	retrieve *retriever.Retriever
	pool     *workerPool
	logger   *slog.Logger
}

// NewRepositoryService builds a RepositoryService. pool may be nil, in
// which case a default-sized pool is created.
func NewRepositoryService(fetcher RepositoryFetcher, idx *indexer.RepositoryIndexer, r *retriever.Retriever, pool *workerPool, logger *slog.Logger) *RepositoryService {
	if logger == nil {
		logger = slog.Default()
	}
	if pool == nil {
		pool = newWorkerPool(4)
	}
	return &RepositoryService{fetcher: fetcher, indexer: idx, retrieve: r, pool: pool, logger: logger}
}

// Add fetches the repository's metadata synchronously, then dispatches the
// archive download, unpacking, and indexing to the worker pool (§4.8, §5).
// An empty branch downloads the repository's default branch.
func (s *RepositoryService) Add(ctx context.Context, repoID, branch string) error {
	meta, err := s.fetcher.GetRepository(ctx, repoID)
	if err != nil {
		return apperror.Wrap(apperror.UpstreamHTTP, "failed to fetch repository metadata", err)
	}

	resolvedBranch := branch
	if resolvedBranch == "" {
		resolvedBranch = meta.DefaultBranch()
	}

	s.pool.Submit(func() {
		bg := context.Background()
		var archive []byte
		var downloadErr error
		if branch == "" {
			archive, downloadErr = s.fetcher.DownloadDefaultBranch(bg, repoID)
		} else {
			archive, downloadErr = s.fetcher.DownloadBranch(bg, repoID, branch)
		}
		if downloadErr != nil {
			s.logger.Error("failed to download repository archive", "repoID", repoID, "branch", resolvedBranch, "error", downloadErr)
			return
		}

		files, err := unzip(archive)
		if err != nil {
			s.logger.Error("failed to unpack repository archive", "repoID", repoID, "error", err)
			return
		}

		result := s.indexer.Index(bg, repoID, meta.Name, resolvedBranch, files)
		if len(result.IndexedFiles) == 0 {
			s.logger.Error("repository indexing produced no indexed files", "repoID", repoID)
		}
	})
	return nil
}

// OverviewQuery delegates to the shared Multi-Stage Retriever.
func (s *RepositoryService) OverviewQuery(ctx context.Context, req domain.QueryRequest) (domain.OverviewResponse, error) {
	return s.retrieve.OverviewQuery(ctx, req)
}

// ChunkQuery delegates to the shared Multi-Stage Retriever.
func (s *RepositoryService) ChunkQuery(ctx context.Context, req domain.QueryRequest) (domain.ChunkResponse, error) {
	return s.retrieve.ChunkQuery(ctx, req)
}

// unzip reads a zip archive into a flat map of path -> bytes. Non-file
// entries (directories) are skipped.
func unzip(archive []byte) (map[string][]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open zip archive: %w", err)
	}

	files := make(map[string][]byte, len(reader.File))
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", f.Name, err)
		}
		files[f.Name] = data
	}
	return files, nil
}
