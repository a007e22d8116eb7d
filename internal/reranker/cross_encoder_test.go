package reranker

import (
	"context"
	"testing"

	"github.com/manak-ai/retrieval/internal/llm"
)

type fakeLLM struct {
	response string
	err      error
}

func (f fakeLLM) Generate(context.Context, string, llm.GenerateOptions) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestLLMCrossEncoder_EmptyPairs(t *testing.T) {
	ce := NewLLMCrossEncoder(fakeLLM{}, "")
	out, err := ce.Score(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil output, got %v", out)
	}
}

func TestLLMCrossEncoder_SortsByScoreDescending(t *testing.T) {
	ce := NewLLMCrossEncoder(fakeLLM{response: `{"scores": [{"index": 0, "score": 0.2}, {"index": 1, "score": 0.9}]}`}, "")
	pairs := []Pair{{ID: "a", Content: "alpha"}, {ID: "b", Content: "beta"}}
	out, err := ce.Score(context.Background(), "q", pairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].ID != "b" || out[1].ID != "a" {
		t.Errorf("expected b then a, got %+v", out)
	}
}

func TestLLMCrossEncoder_GenerationFailurePropagates(t *testing.T) {
	ce := NewLLMCrossEncoder(fakeLLM{err: errBoom{}}, "")
	_, err := ce.Score(context.Background(), "q", []Pair{{ID: "a", Content: "x"}})
	if err == nil {
		t.Fatal("expected error to propagate so the retriever can apply its fallback")
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
