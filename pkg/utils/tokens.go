// Package utils provides token counting and content digest helpers.
package utils

import (
	"fmt"
	"strings"

	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter provides approximate token counting for prompt budgeting.
type TokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter creates a token counter for the given model name.
// All supported providers are approximated with the GPT-4 encoding.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tikModel := tokenizer.GPT4
	if strings.HasPrefix(model, "gpt-3.5") {
		tikModel = tokenizer.GPT35Turbo
	}

	codec, err := tokenizer.ForModel(tikModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec for model %s: %w", model, err)
	}

	return &TokenCounter{codec: codec}, nil
}

// CountTokens returns the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(text string) int {
	if tc == nil || tc.codec == nil {
		return estimateTokens(text)
	}

	count, err := tc.codec.Count(text)
	if err != nil {
		return estimateTokens(text)
	}

	return count
}

// CountTokensSimple counts tokens with the default GPT-4 encoding.
func CountTokensSimple(text string) int {
	counter, err := NewTokenCounter("gpt-4")
	if err != nil {
		return estimateTokens(text)
	}
	return counter.CountTokens(text)
}

// estimateTokens falls back to character-based estimation (4 chars per token).
func estimateTokens(text string) int {
	return len(text) / 4
}
