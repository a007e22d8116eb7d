// Package service exposes the two process-singleton facades (Document,
// Repository) that the HTTP ingress and Tool Dispatcher call into: add,
// overviewQuery, chunkQuery (§4.8).
package service

import (
	"context"
	"log/slog"

	"github.com/manak-ai/retrieval/internal/apperror"
	"github.com/manak-ai/retrieval/internal/client"
	"github.com/manak-ai/retrieval/internal/domain"
	"github.com/manak-ai/retrieval/internal/indexer"
	"github.com/manak-ai/retrieval/internal/retriever"
)

// DocumentFetcher fetches a document's metadata and raw bytes, satisfied by
// *client.DocumentServiceClient.
type DocumentFetcher interface {
	GetDocument(ctx context.Context, id string) (client.DocumentMetadata, error)
	GetFile(ctx context.Context, path string) ([]byte, error)
}

// DocumentService is the process singleton facade for the document artifact
// class: Add (async ingest), OverviewQuery, ChunkQuery.
type DocumentService struct {
	fetcher  DocumentFetcher
	indexer  *indexer.DocumentIndexer
	retrieve *retriever.Retriever
	pool     *workerPool
	logger   *slog.Logger
}

// NewDocumentService builds a DocumentService. pool may be nil, in which
// case a default-sized pool is created.
func NewDocumentService(fetcher DocumentFetcher, idx *indexer.DocumentIndexer, r *retriever.Retriever, pool *workerPool, logger *slog.Logger) *DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	if pool == nil {
		pool = newWorkerPool(4)
	}
	return &DocumentService{fetcher: fetcher, indexer: idx, retrieve: r, pool: pool, logger: logger}
}

// Add fetches the document's metadata, validates its type, then dispatches
// the byte fetch and indexing to the worker pool so the caller is not
// blocked on CPU/GPU-bound chunking, summarization, and embedding work
// (§4.8, §5). The metadata fetch and type check happen synchronously so an
// unsupported type can be reported to the caller as a validation error
// rather than only logged from the background worker.
func (s *DocumentService) Add(ctx context.Context, documentID string) error {
	meta, err := s.fetcher.GetDocument(ctx, documentID)
	if err != nil {
		return apperror.Wrap(apperror.UpstreamHTTP, "failed to fetch document metadata", err)
	}

	attachment, ok := meta.LatestAttachment()
	if !ok {
		return apperror.New(apperror.Validation, "document has no attachments")
	}
	if !indexer.SupportedDocumentExtension(attachment.FileName) {
		return apperror.New(apperror.Validation, "unsupported document type: "+attachment.FileName)
	}

	s.pool.Submit(func() {
		bg := context.Background()
		fileBytes, err := s.fetcher.GetFile(bg, attachment.FilePath)
		if err != nil {
			s.logger.Error("failed to fetch document bytes", "documentID", documentID, "error", err)
			return
		}
		if _, err := s.indexer.Index(bg, documentID, attachment.FileName, fileBytes); err != nil {
			s.logger.Error("document indexing failed", "documentID", documentID, "error", err)
		}
	})
	return nil
}

// OverviewQuery delegates to the shared Multi-Stage Retriever.
func (s *DocumentService) OverviewQuery(ctx context.Context, req domain.QueryRequest) (domain.OverviewResponse, error) {
	return s.retrieve.OverviewQuery(ctx, req)
}

// ChunkQuery delegates to the shared Multi-Stage Retriever.
func (s *DocumentService) ChunkQuery(ctx context.Context, req domain.QueryRequest) (domain.ChunkResponse, error) {
	return s.retrieve.ChunkQuery(ctx, req)
}
