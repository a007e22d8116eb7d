package ingestion

import (
	"strconv"
	"strings"
	"testing"

	"github.com/manak-ai/retrieval/internal/domain"
)

func TestDocumentChunker_SingleSection(t *testing.T) {
	body := "# Title\n" + strings.Repeat("word ", 500)
	c := NewDocumentChunker(DocumentChunkerConfig{ChunkWordsSize: 200, ChunkOverlap: 50})

	chunks := c.Chunk("doc1", domain.ChunkMeta{}, body)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Meta.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, ch.Meta.ChunkIndex)
		}
		if ch.Meta.TotalChunks != 3 {
			t.Errorf("chunk %d has totalChunks %d, want 3", i, ch.Meta.TotalChunks)
		}
		if wc := len(strings.Fields(ch.Content)); wc > 202 {
			t.Errorf("chunk %d has %d words, want <= 202", i, wc)
		}
	}
	if !strings.HasPrefix(chunks[0].Content, "# Title") {
		t.Errorf("chunk 0 should start with '# Title', got %q", chunks[0].Content[:20])
	}
}

func TestDocumentChunker_EmptyBody(t *testing.T) {
	c := NewDocumentChunker(DefaultDocumentChunkerConfig())
	if chunks := c.Chunk("doc1", domain.ChunkMeta{}, "   \n\n  "); chunks != nil {
		t.Errorf("expected nil chunks for empty body, got %d", len(chunks))
	}
}

func TestDocumentChunker_StripsFrontmatter(t *testing.T) {
	body := "---\ntitle: Hello\n---\nsome content here"
	c := NewDocumentChunker(DefaultDocumentChunkerConfig())
	chunks := c.Chunk("doc1", domain.ChunkMeta{}, body)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if strings.Contains(chunks[0].Content, "title:") {
		t.Errorf("frontmatter leaked into chunk content: %q", chunks[0].Content)
	}
}

func TestDocumentChunker_ChunkIDFormat(t *testing.T) {
	c := NewDocumentChunker(DocumentChunkerConfig{ChunkWordsSize: 10, ChunkOverlap: 2})
	chunks := c.Chunk("doc42", domain.ChunkMeta{}, strings.Repeat("w ", 30))
	for i, ch := range chunks {
		want := "doc42_" + strconv.Itoa(i)
		if ch.ID != want {
			t.Errorf("chunk %d id = %q, want %q", i, ch.ID, want)
		}
	}
}
