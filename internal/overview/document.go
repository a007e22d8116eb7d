// Package overview builds the single artifact-level Overview document for
// both documents and repositories.
package overview

import (
	"context"
	"log/slog"
	"strings"

	"github.com/manak-ai/retrieval/internal/domain"
	"github.com/manak-ai/retrieval/internal/summarizer"
)

// DocumentOverviewBuilder generates a hierarchical overview from a
// document's chunks.
type DocumentOverviewBuilder struct {
	hierarchical summarizer.HierarchicalInput
	logger       *slog.Logger
}

// NewDocumentOverviewBuilder builds a DocumentOverviewBuilder.
func NewDocumentOverviewBuilder(hierarchical summarizer.HierarchicalInput, logger *slog.Logger) *DocumentOverviewBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentOverviewBuilder{hierarchical: hierarchical, logger: logger}
}

// Build generates the overview for one document from its chunks.
func (b *DocumentOverviewBuilder) Build(ctx context.Context, artifactID string, chunks []domain.Chunk) domain.Overview {
	meta := domain.OverviewMeta{ArtifactID: artifactID, Type: "overview"}

	texts := extractTexts(chunks)
	if len(texts) == 0 {
		b.logger.Warn("no chunk text available for document overview", "artifactID", artifactID)
		return domain.Overview{ID: artifactID + "_overview", Content: "", Meta: meta}
	}

	content, err := b.hierarchical.SummarizeChunks(ctx, texts)
	if err != nil {
		b.logger.Error("document overview summarization failed, falling back to concatenation", "artifactID", artifactID, "error", err)
		content = concatFirstN(texts, 5)
		meta.Source = "concat_fallback"
		return domain.Overview{ID: artifactID + "_overview", Content: content, Meta: meta}
	}

	meta.Source = "generated"
	return domain.Overview{ID: artifactID + "_overview", Content: content, Meta: meta}
}

func extractTexts(chunks []domain.Chunk) []string {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) != "" {
			texts = append(texts, c.Content)
		}
	}
	return texts
}

func concatFirstN(texts []string, n int) string {
	if n > len(texts) {
		n = len(texts)
	}
	return strings.Join(texts[:n], "\n\n")
}
