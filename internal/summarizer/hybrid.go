package summarizer

import (
	"context"
	"strings"
)

// Hybrid first extracts the most representative sentences, then condenses
// that extract abstractively.
type Hybrid struct {
	extractive  Summarizer
	abstractive Summarizer
}

// NewHybrid composes an extractive and an abstractive summarizer.
func NewHybrid(extractive, abstractive Summarizer) *Hybrid {
	return &Hybrid{extractive: extractive, abstractive: abstractive}
}

// Summarize implements Summarizer.
func (h *Hybrid) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	extract, err := h.extractive.Summarize(ctx, text)
	if err != nil {
		return "", err
	}
	return h.abstractive.Summarize(ctx, extract)
}

// Hierarchical produces a per-chunk extractive summary, joins them, and
// passes the result through a Hybrid summarizer.
type Hierarchical struct {
	extractive Summarizer
	hybrid     Summarizer
}

// NewHierarchical builds a Hierarchical summarizer.
func NewHierarchical(extractive Summarizer, hybrid Summarizer) *Hierarchical {
	return &Hierarchical{extractive: extractive, hybrid: hybrid}
}

// SummarizeChunks implements HierarchicalInput.
func (h *Hierarchical) SummarizeChunks(ctx context.Context, texts []string) (string, error) {
	if len(texts) == 0 {
		return "", nil
	}
	summaries := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		s, err := h.extractive.Summarize(ctx, t)
		if err != nil {
			return "", err
		}
		s = strings.TrimSpace(s)
		if s != "" {
			summaries = append(summaries, s)
		}
	}
	if len(summaries) == 0 {
		return "", nil
	}
	joined := strings.Join(summaries, "\n")
	return h.hybrid.Summarize(ctx, joined)
}

// Summarize implements Summarizer by treating the whole text as a single
// chunk, so Hierarchical can also satisfy plain Summarizer consumers.
func (h *Hierarchical) Summarize(ctx context.Context, text string) (string, error) {
	return h.SummarizeChunks(ctx, []string{text})
}
