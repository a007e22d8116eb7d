// Package embedder wraps the single process-wide text-embedding model
// instance (SPEC_FULL §4.2): lazily constructed, warmed once, and shared
// concurrently by the Vector Index Coordinator's write pipeline and the
// Multi-Stage Retriever's query embedding step.
package embedder

import "context"

// Embedder defines the interface for text embedding services.
type Embedder interface {
	// Embed generates an embedding vector for a single text input.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for multiple text inputs.
	// Returns a slice of embeddings in the same order as the input texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the embedding vectors.
	Dimension() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}

// knownDimensions records the output dimension of the embedding models this
// module is configured to talk to (Models.Embedding, §4.11), so an operator
// who only sets the model name doesn't also have to know its vector width.
var knownDimensions = map[string]int{
	"nomic-embed-text":      768,
	"mxbai-embed-large":     1024,
	"snowflake-arctic-embed": 1024,
}

// dimensionForModel returns the known output dimension for modelName, or a
// conservative default if the model isn't in knownDimensions.
func dimensionForModel(modelName string) int {
	if d, ok := knownDimensions[modelName]; ok {
		return d
	}
	return DefaultOllamaDimension
}
