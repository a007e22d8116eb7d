package vectorstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/manak-ai/retrieval/internal/cache"
	"github.com/manak-ai/retrieval/internal/embedder"
)

// ArtifactClass names a top-level artifact kind; each gets its own pair of
// physical collections.
type ArtifactClass string

func overviewCollection(class ArtifactClass) string {
	return string(class) + "_overview"
}

func chunkCollection(class ArtifactClass) string {
	return string(class) + "_chunk"
}

// Coordinator owns the two physical collections for one artifact class and
// exposes a write pipeline and a stateful filtered retriever on top of a
// VectorStore.
type Coordinator struct {
	store    VectorStore
	embedder embedder.Embedder
	cache    *cache.EmbeddingCache
	class    ArtifactClass
}

// NewCoordinator builds a Coordinator for one artifact class. cache may be
// nil, in which case embeddings are always recomputed.
func NewCoordinator(store VectorStore, emb embedder.Embedder, ec *cache.EmbeddingCache, class ArtifactClass) *Coordinator {
	return &Coordinator{store: store, embedder: emb, cache: ec, class: class}
}

// EnsureCollections creates both physical collections if they do not exist.
func (c *Coordinator) EnsureCollections(ctx context.Context) error {
	dim := c.embedder.Dimension()
	if err := c.store.EnsureCollection(ctx, overviewCollection(c.class), dim); err != nil {
		return fmt.Errorf("ensure overview collection: %w", err)
	}
	if err := c.store.EnsureCollection(ctx, chunkCollection(c.class), dim); err != nil {
		return fmt.Errorf("ensure chunk collection: %w", err)
	}
	return nil
}

// Record is one {id, content, meta} item accepted by the write pipeline.
type Record struct {
	ID      string
	Content string
	Meta    map[string]any
}

// WriteOverview embeds and upserts a single overview record.
func (c *Coordinator) WriteOverview(ctx context.Context, id, content string, meta map[string]any) error {
	return c.write(ctx, overviewCollection(c.class), []Record{{ID: id, Content: content, Meta: meta}})
}

// WriteChunks embeds and upserts a batch of chunk records.
func (c *Coordinator) WriteChunks(ctx context.Context, recs []Record) error {
	return c.write(ctx, chunkCollection(c.class), recs)
}

func (c *Coordinator) write(ctx context.Context, collection string, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	points := make([]Point, len(recs))
	for i, r := range recs {
		vec, err := c.embed(ctx, r.Content)
		if err != nil {
			return fmt.Errorf("embed %q: %w", r.ID, err)
		}
		points[i] = Point{ID: r.ID, Vector: vec, Content: r.Content, Meta: r.Meta}
	}

	if err := c.store.Upsert(ctx, collection, points); err != nil {
		return fmt.Errorf("upsert into %s: %w", collection, err)
	}
	return nil
}

func (c *Coordinator) embed(ctx context.Context, text string) ([]float32, error) {
	key := contentKey(text)
	if c.cache != nil {
		if vec, ok := c.cache.Get(ctx, key); ok {
			return vec, nil
		}
	}
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, vec)
	}
	return vec, nil
}

func contentKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// OverviewRetriever returns a stateful retriever bound to this class's
// overview collection.
func (c *Coordinator) OverviewRetriever() *Retriever {
	return &Retriever{coord: c, collection: overviewCollection(c.class)}
}

// ChunkRetriever returns a stateful retriever bound to this class's chunk
// collection.
func (c *Coordinator) ChunkRetriever() *Retriever {
	return &Retriever{coord: c, collection: chunkCollection(c.class)}
}

// Retriever is parameterized by a filter tree, set on each call; a mutex
// guards the set-filter-then-run critical section so callers sharing one
// Retriever cannot interleave filters across concurrent queries.
type Retriever struct {
	coord      *Coordinator
	collection string

	mu     sync.Mutex
	filter *Filter
}

// Run sets the filter and performs the similarity search as one atomic
// operation, embedding query beforehand via the caller.
func (r *Retriever) Run(ctx context.Context, queryVector []float32, topK int, filter Filter) ([]SearchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.filter = &filter
	return r.coord.store.Search(ctx, r.collection, queryVector, topK, r.filter)
}
