// Package llm provides the Generative model client backing the Abstractive
// summarizer's seq2seq call (SPEC_FULL §4.2.1) and the LLM-driven
// cross-encoder's relevance scoring (§4.7). Kept distinct from the Embedder
// because the two hit different model endpoints.
package llm

import (
	"context"
)

// GenerateOptions configures the LLM generation request. Both call sites in
// this module (Abstractive, LLMCrossEncoder) use a single blocking call per
// invocation, never streaming, so the client surface is intentionally one
// method wide.
type GenerateOptions struct {
	// Model specifies the LLM model to use (e.g., "llama3.2", "mistral").
	Model string

	// SystemPrompt sets the system-level instructions for the model.
	SystemPrompt string

	// Temperature controls randomness in generation (0.0 = deterministic, 1.0 = creative).
	Temperature float32

	// MaxTokens limits the maximum number of tokens in the response.
	MaxTokens int
}

// LLM defines the interface for the generative model client used by
// Abstractive and LLMCrossEncoder.
type LLM interface {
	// Generate sends a prompt to the LLM and returns the complete response.
	// It blocks until the full response is received or an error occurs.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
