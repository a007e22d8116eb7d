package overview

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/manak-ai/retrieval/internal/domain"
	"github.com/manak-ai/retrieval/internal/ingestion"
	"github.com/manak-ai/retrieval/internal/summarizer"
)

var readmeCandidates = []string{"README.md", "README.MD", "README", "readme.md", "readme"}

const (
	readmeMaxChars    = 20000
	topFilesForSummary = 10
	perFileCharLimit   = 5000
)

// RepositoryOverviewBuilder generates the single overview for a whole
// repository: README verbatim/summarized if present, else a hierarchical
// summary of the top-N largest files, else a concatenation fallback.
type RepositoryOverviewBuilder struct {
	hierarchical summarizer.HierarchicalInput
	logger       *slog.Logger
}

// NewRepositoryOverviewBuilder builds a RepositoryOverviewBuilder.
func NewRepositoryOverviewBuilder(hierarchical summarizer.HierarchicalInput, log *slog.Logger) *RepositoryOverviewBuilder {
	if log == nil {
		log = slog.Default()
	}
	return &RepositoryOverviewBuilder{hierarchical: hierarchical, logger: log}
}

// Build generates the overview document for one repository from its raw
// file contents, keyed by repository-relative path.
func (b *RepositoryOverviewBuilder) Build(ctx context.Context, repoID, branch string, files map[string][]byte) domain.Overview {
	meta := domain.OverviewMeta{ArtifactID: repoID, Branch: branch, Type: "overview"}

	if path, raw, ok := findReadme(files); ok {
		text, err := ingestion.DecodeWithFallback(raw)
		if err == nil {
			content := text
			if len(text) > readmeMaxChars {
				summarized, sErr := b.hierarchical.SummarizeChunks(ctx, []string{text})
				if sErr == nil {
					content = summarized
				} else {
					b.logger.Error("readme summarization failed, using raw content", "repoID", repoID, "error", sErr)
				}
			}
			meta.Source = path
			return domain.Overview{ID: repoID + "_overview", Content: content, Meta: meta}
		}
		b.logger.Error("failed to decode readme, falling back to top files", "repoID", repoID, "path", path, "error", err)
	}

	b.logger.Info("no readme found, summarizing top files", "repoID", repoID, "topN", topFilesForSummary)
	texts := topFileTexts(files, topFilesForSummary, perFileCharLimit)
	if len(texts) == 0 {
		b.logger.Warn("no valid texts available to build repository overview", "repoID", repoID)
		return domain.Overview{ID: repoID + "_overview", Content: "", Meta: meta}
	}

	content, err := b.hierarchical.SummarizeChunks(ctx, texts)
	if err != nil {
		b.logger.Error("hierarchical summarizer failed, using concatenation fallback", "repoID", repoID, "error", err)
		meta.Source = "concat_fallback"
		return domain.Overview{ID: repoID + "_overview", Content: concatFirstN(texts, 5), Meta: meta}
	}

	meta.Source = "generated"
	return domain.Overview{ID: repoID + "_overview", Content: content, Meta: meta}
}

func findReadme(files map[string][]byte) (string, []byte, bool) {
	for _, candidate := range readmeCandidates {
		for path, raw := range files {
			if strings.EqualFold(filepath.Base(path), candidate) {
				return path, raw, true
			}
		}
	}
	return "", nil, false
}

// ReadmePath reports the path of the file that would be picked up as the
// repository's README, if any. Exposed so the Indexer can exclude it from
// the chunk collection: a README feeds the overview only (§4.6, §8 scenario
// 2), it is never itself chunked.
func ReadmePath(files map[string][]byte) (string, bool) {
	path, _, ok := findReadme(files)
	return path, ok
}

func topFileTexts(files map[string][]byte, topN, charLimit int) []string {
	type entry struct {
		path string
		raw  []byte
	}
	entries := make([]entry, 0, len(files))
	for path, raw := range files {
		entries = append(entries, entry{path, raw})
	}
	sort.Slice(entries, func(i, j int) bool {
		return len(entries[i].raw) > len(entries[j].raw)
	})
	if topN > len(entries) {
		topN = len(entries)
	}

	texts := make([]string, 0, topN)
	for _, e := range entries[:topN] {
		text, err := ingestion.DecodeWithFallback(e.raw)
		if err != nil {
			continue
		}
		if len(text) > charLimit {
			text = text[:charLimit]
		}
		texts = append(texts, text)
	}
	return texts
}
