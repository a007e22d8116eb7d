package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/manak-ai/retrieval/internal/domain"
)

// RepositoryChunkerConfig controls the character-level sliding window.
type RepositoryChunkerConfig struct {
	ChunkSize int
	Overlap   int
}

// DefaultRepositoryChunkerConfig matches the documented chunker-window default.
func DefaultRepositoryChunkerConfig() RepositoryChunkerConfig {
	return RepositoryChunkerConfig{ChunkSize: 1500, Overlap: 200}
}

// RepositoryChunker implements the character-level sliding window chunking
// path used for repository files.
type RepositoryChunker struct {
	cfg    RepositoryChunkerConfig
	logger *slog.Logger
}

// NewRepositoryChunker builds a RepositoryChunker.
func NewRepositoryChunker(cfg RepositoryChunkerConfig, logger *slog.Logger) *RepositoryChunker {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultRepositoryChunkerConfig().ChunkSize
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize - 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RepositoryChunker{cfg: cfg, logger: logger}
}

// ChunkFile splits one repository file's raw bytes into Chunk entries. On a
// decode failure it logs and returns nil, per the documented failure policy.
func (c *RepositoryChunker) ChunkFile(repoID, branch, path string, raw []byte) []domain.Chunk {
	text, err := decodeWithFallback(raw)
	if err != nil {
		c.logger.Error("failed to decode repository file", "path", path, "error", err)
		return nil
	}
	if text == "" {
		return nil
	}

	sha := sha256.Sum256(raw)
	mimeType := guessMIME(path)
	fileName := filepath.Base(path)

	step := c.cfg.ChunkSize - c.cfg.Overlap
	if step < 1 {
		step = 1
	}

	runes := []rune(text)
	var starts []int
	for start := 0; start < len(runes); start += step {
		starts = append(starts, start)
	}
	total := len(starts)

	chunks := make([]domain.Chunk, 0, total)
	for idx, start := range starts {
		end := start + c.cfg.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		content := string(runes[start:end])
		chunks = append(chunks, domain.Chunk{
			ID:      repoID + ":" + path + ":chunk:" + strconv.Itoa(idx),
			Content: content,
			Type:    "chunk",
			Meta: domain.ChunkMeta{
				SourceKind:  domain.SourceRepository,
				ArtifactID:  repoID,
				Branch:      branch,
				FilePath:    path,
				FileName:    fileName,
				MimeType:    mimeType,
				FileSize:    len(raw),
				SHA256:      hex.EncodeToString(sha[:]),
				ChunkIndex:  idx,
				TotalChunks: total,
			},
		})
	}
	return chunks
}

// decodeWithFallback decodes raw bytes as UTF-8, falling back to Latin-1 on
// invalid sequences; Latin-1 maps every byte to a character, so nothing is
// replaced.
func decodeWithFallback(raw []byte) (string, error) {
	return DecodeWithFallback(raw)
}

// DecodeWithFallback decodes raw bytes as UTF-8, falling back to Latin-1 on
// invalid sequences. Exported for reuse by the overview builder, which reads
// raw repository file bytes under the same decoding policy.
func DecodeWithFallback(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func guessMIME(path string) string {
	ext := filepath.Ext(path)
	if t := mime.TypeByExtension(ext); t != "" {
		return strings.Split(t, ";")[0]
	}
	return "text/plain"
}

