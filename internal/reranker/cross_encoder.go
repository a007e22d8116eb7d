package reranker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/manak-ai/retrieval/internal/llm"
)

// Pair is one query/content pair to be cross-scored.
type Pair struct {
	ID      string
	Content string
}

// Scored carries a Pair's ID alongside its cross-encoder score.
type Scored struct {
	ID    string
	Score float32
}

// CrossEncoder scores (query, content) pairs for relevance, used by the
// Multi-Stage Retriever's chunk-query rerank step.
type CrossEncoder interface {
	Score(ctx context.Context, query string, pairs []Pair) ([]Scored, error)
}

// LLMCrossEncoder uses a generative model as a cross-encoder: the query and
// every candidate are shown together in one prompt and scored 0.0-1.0.
type LLMCrossEncoder struct {
	llmClient llm.LLM
	model     string
}

// NewLLMCrossEncoder builds an LLMCrossEncoder.
func NewLLMCrossEncoder(llmClient llm.LLM, model string) *LLMCrossEncoder {
	if model == "" {
		model = "llama3.2"
	}
	return &LLMCrossEncoder{llmClient: llmClient, model: model}
}

type crossScore struct {
	Index int     `json:"index"`
	Score float32 `json:"score"`
}

type crossScoreResponse struct {
	Scores []crossScore `json:"scores"`
}

// Score implements CrossEncoder.
func (r *LLMCrossEncoder) Score(ctx context.Context, query string, pairs []Pair) ([]Scored, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	prompt := buildCrossEncoderPrompt(query, pairs)
	response, err := r.llmClient.Generate(ctx, prompt, llm.GenerateOptions{
		Model:       r.model,
		Temperature: 0.0,
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, fmt.Errorf("cross-encoder generation failed: %w", err)
	}

	scores, err := parseCrossEncoderResponse(response, len(pairs))
	if err != nil {
		return nil, fmt.Errorf("cross-encoder response parse failed: %w", err)
	}

	out := make([]Scored, len(pairs))
	for i, p := range pairs {
		out[i] = Scored{ID: p.ID, Score: scores[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func buildCrossEncoderPrompt(query string, pairs []Pair) string {
	var sb strings.Builder
	sb.WriteString("You are a relevance scoring system. Score each document's relevance to the query.\n\n")
	sb.WriteString("Query: ")
	sb.WriteString(query)
	sb.WriteString("\n\nDocuments to score:\n")
	for i, p := range pairs {
		sb.WriteString(fmt.Sprintf("[Doc %d]: %s\n\n", i, p.Content))
	}
	sb.WriteString(`Score each document from 0.0 to 1.0 based on relevance to the query.
Output ONLY valid JSON in this exact format:
{"scores": [{"index": 0, "score": 0.9}, {"index": 1, "score": 0.3}]}
Output only JSON, no explanation:`)
	return sb.String()
}

func parseCrossEncoderResponse(response string, n int) ([]float32, error) {
	response = strings.TrimSpace(response)
	if idx := strings.Index(response, "```json"); idx != -1 {
		start := idx + 7
		if end := strings.Index(response[start:], "```"); end != -1 {
			response = response[start : start+end]
		}
	} else if idx := strings.Index(response, "```"); idx != -1 {
		start := idx + 3
		if end := strings.Index(response[start:], "```"); end != -1 {
			response = response[start : start+end]
		}
	}
	response = strings.TrimSpace(response)

	var parsed crossScoreResponse
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		return nil, err
	}

	scores := make([]float32, n)
	for _, s := range parsed.Scores {
		if s.Index >= 0 && s.Index < n {
			score := s.Score
			if score < 0 {
				score = 0
			}
			if score > 1 {
				score = 1
			}
			scores[s.Index] = score
		}
	}
	return scores, nil
}

var _ CrossEncoder = (*LLMCrossEncoder)(nil)
