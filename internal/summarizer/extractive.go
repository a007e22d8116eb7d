package summarizer

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/manak-ai/retrieval/internal/embedder"
)

// Extractive selects the maxSentences sentences closest to the centroid of
// all sentence embeddings, restoring their original order.
type Extractive struct {
	embedder     embedder.Embedder
	maxSentences int
}

// NewExtractive builds an Extractive summarizer backed by the given
// Embedder. maxSentences defaults to 3 when non-positive.
func NewExtractive(emb embedder.Embedder, maxSentences int) *Extractive {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &Extractive{embedder: emb, maxSentences: maxSentences}
}

// Summarize implements Summarizer.
func (e *Extractive) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	sentences := splitSentences(text)
	if len(sentences) <= e.maxSentences {
		return text, nil
	}

	vectors, err := e.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return "", err
	}

	centroid := meanVector(vectors)

	type scored struct {
		index int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, v := range vectors {
		scores[i] = scored{index: i, score: cosineSimilarity(v, centroid)}
	}

	// Stable tie-break on original index: sort by score descending, and for
	// equal scores sort.SliceStable preserves the original index ordering.
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	picked := make([]int, 0, e.maxSentences)
	for _, s := range scores[:e.maxSentences] {
		picked = append(picked, s.index)
	}
	sort.Ints(picked)

	parts := make([]string, len(picked))
	for i, idx := range picked {
		parts[i] = sentences[idx]
	}
	return strings.Join(parts, " "), nil
}

func meanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	mean := make([]float32, dim)
	for _, v := range vectors {
		for i := 0; i < dim && i < len(v); i++ {
			mean[i] += v[i]
		}
	}
	n := float32(len(vectors))
	for i := range mean {
		mean[i] /= n
	}
	return mean
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// splitSentences splits text into sentences on '.', '!', '?' boundaries,
// treating common abbreviations as non-terminal.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || isSpace(runes[i+1]) {
				sentence := strings.TrimSpace(current.String())
				if sentence != "" && !endsInAbbreviation(sentence) {
					sentences = append(sentences, sentence)
					current.Reset()
				}
			}
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		sentences = append(sentences, remaining)
	}
	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

var commonAbbreviations = []string{
	"mr.", "mrs.", "ms.", "dr.", "prof.",
	"inc.", "ltd.", "corp.",
	"etc.", "e.g.", "i.e.",
	"vs.", "st.", "ave.", "no.", "vol.",
}

func endsInAbbreviation(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, abbr := range commonAbbreviations {
		if strings.HasSuffix(lower, abbr) {
			return true
		}
	}
	return false
}
