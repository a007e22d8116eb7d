// Package summarizer implements the four summarization strategies: extractive
// (centroid similarity), abstractive (generative model call), hybrid
// (extractive then abstractive), and hierarchical (per-chunk extractive then
// hybrid).
package summarizer

import "context"

// Summarizer is the single contract all four strategies implement.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// HierarchicalInput is the Hierarchical strategy's contract: it takes a list
// of chunk texts rather than a single string.
type HierarchicalInput interface {
	SummarizeChunks(ctx context.Context, texts []string) (string, error)
}

const abstractiveFallbackChars = 500

// truncateFallback truncates text to n bytes; the Abstractive summarizer
// returns it when its model call fails or yields no text (§4.1).
func truncateFallback(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}
