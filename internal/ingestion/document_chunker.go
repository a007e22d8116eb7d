// Package ingestion splits raw artifact bytes into ordered, overlapping
// chunks. It has two entry points: DocumentChunker for markdown/text bodies
// and RepositoryChunker for arbitrary repository files.
package ingestion

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/manak-ai/retrieval/internal/domain"
)

// headingLinePattern matches a single ATX-style markdown heading line.
var headingLinePattern = regexp.MustCompile(`(?m)^(#{1,6}\s+.+)$`)

// frontmatterPattern matches a leading YAML frontmatter block.
var frontmatterPattern = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n?`)

const (
	// sectionSplitWords is the word threshold above which a heading section
	// is further split by blank lines before sliding-window chunking.
	sectionSplitWords = 1200
)

// DocumentChunkerConfig controls the markdown chunker's sliding window.
type DocumentChunkerConfig struct {
	ChunkWordsSize int
	ChunkOverlap   int
}

// DefaultDocumentChunkerConfig mirrors the documented chunker-window default.
func DefaultDocumentChunkerConfig() DocumentChunkerConfig {
	return DocumentChunkerConfig{ChunkWordsSize: 200, ChunkOverlap: 50}
}

// DocumentChunker implements the markdown-aware document chunking path.
type DocumentChunker struct {
	cfg DocumentChunkerConfig
}

// NewDocumentChunker builds a DocumentChunker, clamping overlap into
// [0, chunkWordsSize) as required by the spec.
func NewDocumentChunker(cfg DocumentChunkerConfig) *DocumentChunker {
	if cfg.ChunkWordsSize <= 0 {
		cfg.ChunkWordsSize = DefaultDocumentChunkerConfig().ChunkWordsSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.ChunkOverlap >= cfg.ChunkWordsSize {
		cfg.ChunkOverlap = cfg.ChunkWordsSize - 1
	}
	return &DocumentChunker{cfg: cfg}
}

// section is one heading-delimited part of the body; Heading is the heading
// line itself (empty for any leading text before the first heading).
type section struct {
	Heading string
	Body    string
}

// Chunk splits one document's body into Chunk entries. artifactID is the
// documentId; meta carries the shared per-document fields (file path, name,
// mime type, size, sha256).
func (c *DocumentChunker) Chunk(artifactID string, meta domain.ChunkMeta, body string) []domain.Chunk {
	body = strings.TrimSpace(stripFrontmatter(body))
	if body == "" {
		return nil
	}

	var windows []string
	for _, sec := range splitByHeadings(body) {
		if wordCount(sec.Body) > sectionSplitWords {
			parts := splitByBlankLines(sec.Body)
			for i, part := range parts {
				heading := ""
				if i == 0 {
					heading = sec.Heading
				}
				windows = append(windows, c.slidingWindows(heading, part)...)
			}
			continue
		}
		windows = append(windows, c.slidingWindows(sec.Heading, sec.Body)...)
	}

	chunks := make([]domain.Chunk, 0, len(windows))
	total := len(windows)
	for i, content := range windows {
		m := meta
		m.SourceKind = domain.SourceDocument
		m.ArtifactID = artifactID
		m.ChunkIndex = i
		m.TotalChunks = total
		chunks = append(chunks, domain.Chunk{
			ID:      artifactID + "_" + strconv.Itoa(i),
			Content: content,
			Meta:    m,
			Type:    "chunk",
		})
	}
	return chunks
}

// slidingWindows produces word-level sliding windows over one section's
// body. The section's heading line, if any, is prefixed only onto the first
// window and does not consume the window's word budget.
func (c *DocumentChunker) slidingWindows(heading, body string) []string {
	words := strings.Fields(body)
	if len(words) == 0 {
		if heading != "" {
			return []string{heading}
		}
		return nil
	}

	step := c.cfg.ChunkWordsSize - c.cfg.ChunkOverlap
	if step < 1 {
		step = 1
	}

	var out []string
	for start := 0; start < len(words); start += step {
		end := start + c.cfg.ChunkWordsSize
		if end > len(words) {
			end = len(words)
		}
		text := strings.Join(words[start:end], " ")
		if start == 0 && heading != "" {
			text = heading + "\n" + text
		}
		out = append(out, text)
		if end >= len(words) {
			break
		}
	}
	return out
}

// stripFrontmatter removes a leading YAML frontmatter block, if present.
func stripFrontmatter(text string) string {
	if loc := frontmatterPattern.FindStringIndex(text); loc != nil && loc[0] == 0 {
		return text[loc[1]:]
	}
	return text
}

// splitByHeadings splits body on ATX headings, pairing each heading with the
// body text that follows it up to the next heading (or end of document).
func splitByHeadings(body string) []section {
	locs := headingLinePattern.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return []section{{Body: body}}
	}

	var sections []section
	if locs[0][0] > 0 {
		sections = append(sections, section{Body: body[:locs[0][0]]})
	}
	for i, loc := range locs {
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, section{
			Heading: strings.TrimSpace(body[loc[0]:loc[1]]),
			Body:    body[loc[1]:end],
		})
	}
	return sections
}

// splitByBlankLines splits an oversized section on blank lines.
func splitByBlankLines(text string) []string {
	parts := regexp.MustCompile(`\n\s*\n`).Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
