package ingestion

import (
	"strconv"
	"strings"
	"testing"
)

func TestRepositoryChunker_SlidingWindow(t *testing.T) {
	c := NewRepositoryChunker(RepositoryChunkerConfig{ChunkSize: 100, Overlap: 20}, nil)
	content := strings.Repeat("a", 250)

	chunks := c.ChunkFile("repo1", "main", "src/a.py", []byte(content))

	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	for i, ch := range chunks {
		if ch.Meta.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, ch.Meta.ChunkIndex)
		}
		wantID := "repo1:src/a.py:chunk:" + strconv.Itoa(i)
		if ch.ID != wantID {
			t.Errorf("chunk %d id = %q, want %q", i, ch.ID, wantID)
		}
		if ch.Meta.TotalChunks != len(chunks) {
			t.Errorf("chunk %d totalChunks = %d, want %d", i, ch.Meta.TotalChunks, len(chunks))
		}
	}
	if chunks[0].Meta.SHA256 == "" {
		t.Error("expected non-empty sha256")
	}
}

func TestRepositoryChunker_EmptyFile(t *testing.T) {
	c := NewRepositoryChunker(DefaultRepositoryChunkerConfig(), nil)
	if chunks := c.ChunkFile("repo1", "", "empty.txt", []byte{}); chunks != nil {
		t.Errorf("expected nil chunks for empty file, got %d", len(chunks))
	}
}

func TestRepositoryChunker_LatinFallback(t *testing.T) {
	c := NewRepositoryChunker(DefaultRepositoryChunkerConfig(), nil)
	raw := []byte{0xE9, 0x20, 0x61, 0x63, 0x63, 0x65, 0x6e, 0x74} // invalid UTF-8 lead byte
	chunks := c.ChunkFile("repo1", "", "legacy.txt", raw)
	if len(chunks) == 0 {
		t.Fatal("expected chunker to fall back to latin-1 decoding rather than drop the file")
	}
}
