package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/manak-ai/retrieval/internal/llm"
)

const abstractiveSystemPrompt = "You are a precise summarization assistant. Produce a concise, faithful summary of the text the user provides. Do not add information that is not present in the text."

// Abstractive invokes a generative model to produce a summary, falling back
// to a character truncation of the input on model failure.
type Abstractive struct {
	model        llm.LLM
	modelName    string
	maxLength    int
	minLength    int
}

// NewAbstractive builds an Abstractive summarizer backed by the given LLM
// client. maxLength/minLength set the word range requested in the user
// prompt, and maxLength*4 caps the generated tokens; modelName overrides the
// client's default model when set.
func NewAbstractive(model llm.LLM, modelName string, maxLength, minLength int) *Abstractive {
	if maxLength <= 0 {
		maxLength = 200
	}
	if minLength <= 0 {
		minLength = 30
	}
	return &Abstractive{model: model, modelName: modelName, maxLength: maxLength, minLength: minLength}
}

// Summarize implements Summarizer.
func (a *Abstractive) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	prompt := fmt.Sprintf(
		"Summarize the following text in roughly %d to %d words:\n\n%s",
		a.minLength, a.maxLength, text,
	)
	out, err := a.model.Generate(ctx, prompt, llm.GenerateOptions{
		Model:        a.modelName,
		SystemPrompt: abstractiveSystemPrompt,
		Temperature:  0.3,
		MaxTokens:    a.maxLength * 4,
	})
	if err != nil {
		return truncateFallback(text, abstractiveFallbackChars), nil
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return truncateFallback(text, abstractiveFallbackChars), nil
	}
	return out, nil
}
