package indexer

import (
	"context"
	"testing"

	"github.com/manak-ai/retrieval/internal/ingestion"
	"github.com/manak-ai/retrieval/internal/overview"
	"github.com/manak-ai/retrieval/internal/vectorstore"
)

func TestRepositoryIndexer_IndexesOnlyAllowedExtensions(t *testing.T) {
	store := newFakeVectorStore()
	coord := vectorstore.NewCoordinator(store, fakeEmbedder{}, nil, "repository")
	ob := overview.NewRepositoryOverviewBuilder(fakeHierarchical{}, nil)
	chunker := ingestion.NewRepositoryChunker(ingestion.DefaultRepositoryChunkerConfig(), nil)
	idx := NewRepositoryIndexer(chunker, ob, coord, nil, nil)

	files := map[string][]byte{
		"main.py":    []byte("print('hi')"),
		"image.png":  []byte{0x89, 0x50, 0x4e, 0x47},
		".gitignore": []byte("*.log"),
	}

	result := idx.Index(context.Background(), "repo1", "my-repo", "main", files)
	if len(result.IndexedFiles) != 1 {
		t.Fatalf("expected exactly 1 indexed file, got %d", len(result.IndexedFiles))
	}
	if result.IndexedFiles[0].Path != "main.py" {
		t.Errorf("expected main.py to be indexed, got %q", result.IndexedFiles[0].Path)
	}
}

func TestRepositoryIndexer_NoReadmeFallsBackToOverview(t *testing.T) {
	store := newFakeVectorStore()
	coord := vectorstore.NewCoordinator(store, fakeEmbedder{}, nil, "repository")
	ob := overview.NewRepositoryOverviewBuilder(fakeHierarchical{}, nil)
	chunker := ingestion.NewRepositoryChunker(ingestion.DefaultRepositoryChunkerConfig(), nil)
	idx := NewRepositoryIndexer(chunker, ob, coord, nil, nil)

	files := map[string][]byte{"main.py": []byte("print('hi')")}
	result := idx.Index(context.Background(), "repo1", "my-repo", "main", files)
	if len(store.upserts["repository_overview"]) != 1 {
		t.Errorf("expected 1 overview write, got %d", len(store.upserts["repository_overview"]))
	}
	if result.OverviewID != "repo1_overview" {
		t.Errorf("unexpected overview id %q", result.OverviewID)
	}
}

func TestRepositoryIndexer_ReadmeFeedsOverviewOnlyNotChunks(t *testing.T) {
	store := newFakeVectorStore()
	coord := vectorstore.NewCoordinator(store, fakeEmbedder{}, nil, "repository")
	ob := overview.NewRepositoryOverviewBuilder(fakeHierarchical{}, nil)
	chunker := ingestion.NewRepositoryChunker(ingestion.DefaultRepositoryChunkerConfig(), nil)
	idx := NewRepositoryIndexer(chunker, ob, coord, nil, nil)

	files := map[string][]byte{
		"README.md": []byte("Hello project X"),
		"src/a.py":  []byte("print('hello world')\n"),
	}

	result := idx.Index(context.Background(), "repo1", "my-repo", "main", files)
	if len(result.IndexedFiles) != 1 {
		t.Fatalf("expected exactly 1 indexed file, got %d", len(result.IndexedFiles))
	}
	if result.IndexedFiles[0].Path != "src/a.py" {
		t.Errorf("expected src/a.py to be indexed, got %q", result.IndexedFiles[0].Path)
	}
	if result.OverviewID != "repo1_overview" {
		t.Errorf("unexpected overview id %q", result.OverviewID)
	}

	for _, batch := range store.upserts["repository_chunk"] {
		for _, p := range batch {
			if path, ok := p.Meta["file_path"]; ok && path == "README.md" {
				t.Errorf("README.md should never be written to the chunk collection")
			}
		}
	}
}

func TestRepositoryIndexer_EmptyRepository(t *testing.T) {
	store := newFakeVectorStore()
	coord := vectorstore.NewCoordinator(store, fakeEmbedder{}, nil, "repository")
	ob := overview.NewRepositoryOverviewBuilder(fakeHierarchical{}, nil)
	chunker := ingestion.NewRepositoryChunker(ingestion.DefaultRepositoryChunkerConfig(), nil)
	idx := NewRepositoryIndexer(chunker, ob, coord, nil, nil)

	result := idx.Index(context.Background(), "repo1", "empty-repo", "main", map[string][]byte{})
	if len(result.IndexedFiles) != 0 {
		t.Errorf("expected no indexed files, got %d", len(result.IndexedFiles))
	}
}
