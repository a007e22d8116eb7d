// Package retriever implements the Multi-Stage Retriever shared by the
// Document and Repository services: overview search, chunk search with
// cross-rerank, and a final hybrid-summarized answer.
package retriever

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/manak-ai/retrieval/internal/domain"
	"github.com/manak-ai/retrieval/internal/embedder"
	"github.com/manak-ai/retrieval/internal/reranker"
	"github.com/manak-ai/retrieval/internal/summarizer"
	"github.com/manak-ai/retrieval/internal/vectorstore"
)

const (
	pairContentChars          = 512
	defaultRerankTopK         = 10
	finalSummaryFallbackChars = 4000
)

// Retriever is parameterized by one artifact class's collection pair and the
// metadata field name that carries the artifact ID.
type Retriever struct {
	coord            *vectorstore.Coordinator
	embedder         embedder.Embedder
	crossEncoder     reranker.CrossEncoder
	hybrid           summarizer.Summarizer
	artifactIDField  string
	rerankTopK       int
	finalSummaryTopK int
	logger           *slog.Logger
}

// Config configures a Retriever instance.
type Config struct {
	ArtifactIDField  string
	RerankTopK       int // 0 means min(10, n)
	FinalSummaryTopK int // 0 means "all rerank survivors"
}

// New builds a Retriever for one artifact class.
func New(coord *vectorstore.Coordinator, emb embedder.Embedder, ce reranker.CrossEncoder, hybrid summarizer.Summarizer, cfg Config, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		coord:            coord,
		embedder:         emb,
		crossEncoder:     ce,
		hybrid:           hybrid,
		artifactIDField:  cfg.ArtifactIDField,
		rerankTopK:       cfg.RerankTopK,
		finalSummaryTopK: cfg.FinalSummaryTopK,
		logger:           logger,
	}
}

// OverviewQuery embeds the query, searches the overview collection, and
// returns the hits in response shape.
func (r *Retriever) OverviewQuery(ctx context.Context, req domain.QueryRequest) (domain.OverviewResponse, error) {
	topK := topKOrDefault(req.TopK)

	vec, err := r.embedder.Embed(ctx, req.Query)
	if err != nil {
		return domain.OverviewResponse{}, err
	}

	filter := r.composeFilter("overview", req.ArtifactIDs)
	results, err := r.coord.OverviewRetriever().Run(ctx, vec, topK, filter)
	if err != nil {
		r.logger.Error("overview search failed", "error", err)
		return domain.OverviewResponse{Query: req.Query, TopK: topK, ArtifactIDs: sortedKeys(req.ArtifactIDs)}, nil
	}

	return domain.OverviewResponse{
		Query:       req.Query,
		TopK:        topK,
		ArtifactIDs: sortedKeys(req.ArtifactIDs),
		Overviews:   toHits(results),
	}, nil
}

// ChunkQuery embeds the query, searches the chunk collection, deduplicates,
// cross-reranks, and produces a final hybrid summary of the top results.
func (r *Retriever) ChunkQuery(ctx context.Context, req domain.QueryRequest) (domain.ChunkResponse, error) {
	topK := topKOrDefault(req.TopK)
	resp := domain.ChunkResponse{Query: req.Query, TopK: topK, ArtifactIDs: sortedKeys(req.ArtifactIDs)}

	vec, err := r.embedder.Embed(ctx, req.Query)
	if err != nil {
		return resp, err
	}

	filter := r.composeFilter("chunk", req.ArtifactIDs)
	results, err := r.coord.ChunkRetriever().Run(ctx, vec, topK, filter)
	if err != nil {
		r.logger.Error("chunk search failed", "error", err)
		return resp, nil
	}
	if len(results) == 0 {
		return resp, nil
	}

	deduped := dedupeByID(results)
	reranked := r.rerank(ctx, req.Query, deduped)

	resp.Chunks = toHits(reranked)
	resp.FinalSummary = r.summarize(ctx, reranked)
	return resp, nil
}

func (r *Retriever) composeFilter(artifactType string, artifactIDs map[string]struct{}) vectorstore.Filter {
	leaf := vectorstore.FieldIn("type", []string{artifactType})
	if len(artifactIDs) == 0 {
		return leaf
	}
	ids := sortedKeys(artifactIDs)
	return vectorstore.And(leaf, vectorstore.FieldIn(r.artifactIDField, ids))
}

// dedupeByID keeps the last occurrence of each ID, matching §4.7 step 3.
func dedupeByID(results []vectorstore.SearchResult) []vectorstore.SearchResult {
	order := make([]string, 0, len(results))
	last := make(map[string]vectorstore.SearchResult, len(results))
	for _, res := range results {
		if _, seen := last[res.ID]; !seen {
			order = append(order, res.ID)
		}
		last[res.ID] = res
	}
	out := make([]vectorstore.SearchResult, len(order))
	for i, id := range order {
		out[i] = last[id]
	}
	return out
}

func (r *Retriever) rerank(ctx context.Context, query string, results []vectorstore.SearchResult) []vectorstore.SearchResult {
	topK := r.rerankTopK
	if topK <= 0 {
		topK = defaultRerankTopK
	}
	if topK > len(results) {
		topK = len(results)
	}

	pairs := make([]reranker.Pair, 0, len(results))
	for _, res := range results {
		if strings.TrimSpace(res.Content) == "" {
			continue
		}
		content := res.Content
		if len(content) > pairContentChars {
			content = content[:pairContentChars]
		}
		pairs = append(pairs, reranker.Pair{ID: res.ID, Content: content})
	}

	if len(pairs) == 0 || r.crossEncoder == nil {
		return truncate(results, topK)
	}

	scored, err := r.crossEncoder.Score(ctx, query, pairs)
	if err != nil {
		r.logger.Error("cross-encoder failed, falling back to pre-rerank order", "error", err)
		return truncate(results, topK)
	}

	byID := make(map[string]vectorstore.SearchResult, len(results))
	for _, res := range results {
		byID[res.ID] = res
	}

	ordered := make([]vectorstore.SearchResult, 0, len(scored))
	for _, s := range scored {
		if res, ok := byID[s.ID]; ok {
			res.Score = s.Score
			ordered = append(ordered, res)
		}
	}
	return truncate(ordered, topK)
}

func truncate(results []vectorstore.SearchResult, n int) []vectorstore.SearchResult {
	if n > len(results) {
		n = len(results)
	}
	return results[:n]
}

func (r *Retriever) summarize(ctx context.Context, results []vectorstore.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	top := results
	if r.finalSummaryTopK > 0 && r.finalSummaryTopK < len(results) {
		top = results[:r.finalSummaryTopK]
	}

	contents := make([]string, len(top))
	for i, res := range top {
		contents[i] = res.Content
	}
	concatenated := strings.Join(contents, "\n\n")

	summary, err := r.hybrid.Summarize(ctx, concatenated)
	if err != nil {
		r.logger.Error("final summarization failed, truncating instead", "error", err)
		return truncateChars(concatenated, finalSummaryFallbackChars)
	}
	return summary
}

func truncateChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func toHits(results []vectorstore.SearchResult) []domain.Hit {
	hits := make([]domain.Hit, len(results))
	for i, res := range results {
		hits[i] = domain.Hit{ID: res.ID, Content: res.Content, Meta: res.Metadata, Score: res.Score}
	}
	return hits
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func topKOrDefault(topK int) int {
	if topK <= 0 {
		return domain.DefaultTopK
	}
	return topK
}
