package tool

import (
	"context"

	"github.com/manak-ai/retrieval/internal/domain"
)

// QueryService is satisfied by *service.DocumentService and
// *service.RepositoryService.
type QueryService interface {
	OverviewQuery(ctx context.Context, req domain.QueryRequest) (domain.OverviewResponse, error)
	ChunkQuery(ctx context.Context, req domain.QueryRequest) (domain.ChunkResponse, error)
}

// RegisterBuiltins registers the four built-in tools named in §4.9:
// documentOverviewQuery, documentChunkQuery, repositoryOverviewQuery,
// repositoryChunkQuery.
func RegisterBuiltins(d *Dispatcher, documents, repositories QueryService) {
	d.Register("documentOverviewQuery", func(ctx context.Context, req domain.QueryRequest) (any, error) {
		return documents.OverviewQuery(ctx, req)
	})
	d.Register("documentChunkQuery", func(ctx context.Context, req domain.QueryRequest) (any, error) {
		return documents.ChunkQuery(ctx, req)
	})
	d.Register("repositoryOverviewQuery", func(ctx context.Context, req domain.QueryRequest) (any, error) {
		return repositories.OverviewQuery(ctx, req)
	})
	d.Register("repositoryChunkQuery", func(ctx context.Context, req domain.QueryRequest) (any, error) {
		return repositories.ChunkQuery(ctx, req)
	})
}
