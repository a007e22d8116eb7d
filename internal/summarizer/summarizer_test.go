package summarizer

import (
	"context"
	"strings"
	"testing"

	"github.com/manak-ai/retrieval/internal/llm"
)

// fakeEmbedder assigns each sentence the deterministic bag-of-words vector
// built by vectorize, giving reproducible extractive test behavior.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return vectorize(text), nil
}

func (fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = vectorize(t)
	}
	return out, nil
}

func (fakeEmbedder) Dimension() int     { return 4 }
func (fakeEmbedder) ModelName() string  { return "fake" }

// vectorize produces a crude bag-of-words style vector over a fixed 4-slot
// hash so that similar sentences land close together.
func vectorize(text string) []float32 {
	v := make([]float32, 4)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := 0
		for _, r := range w {
			h += int(r)
		}
		v[h%4]++
	}
	return v
}

type fakeLLM struct {
	response string
	err      error
}

func (f fakeLLM) Generate(_ context.Context, _ string, _ llm.GenerateOptions) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestExtractive_EmptyInput(t *testing.T) {
	e := NewExtractive(fakeEmbedder{}, 3)
	out, err := e.Summarize(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestExtractive_UnderThresholdReturnsUnchanged(t *testing.T) {
	e := NewExtractive(fakeEmbedder{}, 5)
	text := "One sentence. Two sentence. Three sentence."
	out, err := e.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != text {
		t.Errorf("expected unchanged text, got %q", out)
	}
}

func TestExtractive_SelectsSubsetInOriginalOrder(t *testing.T) {
	e := NewExtractive(fakeEmbedder{}, 2)
	text := "Alpha one. Beta two. Gamma three. Delta four."
	out, err := e.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sentences := strings.Split(out, " ")
	_ = sentences
	count := strings.Count(out, ".")
	if count != 2 {
		t.Errorf("expected 2 sentences in output, got %d (%q)", count, out)
	}
	// Original order: whichever two are picked, the one appearing earlier in
	// text must appear earlier in the output.
	idxAlpha := strings.Index(out, "Alpha")
	idxDelta := strings.Index(out, "Delta")
	if idxAlpha != -1 && idxDelta != -1 && idxAlpha > idxDelta {
		t.Errorf("expected original order to be preserved, got %q", out)
	}
}

func TestAbstractive_FallsBackOnModelFailure(t *testing.T) {
	a := NewAbstractive(fakeLLM{err: errFake{}}, "", 200, 30)
	text := strings.Repeat("word ", 200)
	out, err := a.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("abstractive must never raise on model failure, got %v", err)
	}
	if out != truncateFallback(text, abstractiveFallbackChars) {
		t.Errorf("expected truncation fallback, got %q", out)
	}
}

func TestAbstractive_EmptyInput(t *testing.T) {
	a := NewAbstractive(fakeLLM{response: "summary"}, "", 200, 30)
	out, err := a.Summarize(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestAbstractive_UsesModelOutput(t *testing.T) {
	a := NewAbstractive(fakeLLM{response: "a tidy summary"}, "", 200, 30)
	out, err := a.Summarize(context.Background(), "Alpha one. Beta two.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "a tidy summary" {
		t.Errorf("expected model output, got %q", out)
	}
}

func TestHybrid_ComposesExtractiveThenAbstractive(t *testing.T) {
	extractive := NewExtractive(fakeEmbedder{}, 2)
	abstractive := NewAbstractive(fakeLLM{response: "condensed"}, "", 200, 30)
	h := NewHybrid(extractive, abstractive)

	out, err := h.Summarize(context.Background(), "Alpha one. Beta two. Gamma three. Delta four.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "condensed" {
		t.Errorf("expected abstractive output, got %q", out)
	}
}

func TestHybrid_EmptyInput(t *testing.T) {
	h := NewHybrid(NewExtractive(fakeEmbedder{}, 2), NewAbstractive(fakeLLM{response: "x"}, "", 200, 30))
	out, err := h.Summarize(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestHierarchical_JoinsPerChunkSummaries(t *testing.T) {
	extractive := NewExtractive(fakeEmbedder{}, 1)
	abstractive := NewAbstractive(fakeLLM{response: "final"}, "", 200, 30)
	hybrid := NewHybrid(extractive, abstractive)
	h := NewHierarchical(extractive, hybrid)

	out, err := h.SummarizeChunks(context.Background(), []string{
		"Chunk one sentence. Another sentence here.",
		"Chunk two sentence. Yet another one.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "final" {
		t.Errorf("expected hybrid output, got %q", out)
	}
}

func TestHierarchical_EmptyInput(t *testing.T) {
	extractive := NewExtractive(fakeEmbedder{}, 1)
	abstractive := NewAbstractive(fakeLLM{response: "final"}, "", 200, 30)
	h := NewHierarchical(extractive, NewHybrid(extractive, abstractive))

	out, err := h.SummarizeChunks(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

type errFake struct{}

func (errFake) Error() string { return "model unavailable" }
