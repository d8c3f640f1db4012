// Package tokens estimates prompt token usage before dispatching to a
// provider. OpenAI-tokenized models (gpt-4, deepseek-chat both use
// cl100k_base) get tiktoken counts; anything else falls back to a
// characters-per-token estimate.
package tokens

import (
	"github.com/tiktoken-go/tokenizer"

	"github.com/codevault-app/codevault/internal/domain"
)

// Per-message overhead for chat models per OpenAI's accounting: 3 tokens
// per message plus 1 for the role, plus 3 for assistant priming.
const (
	tokensPerMessage = 3
	tokensPerRole    = 1
	primingTokens    = 3

	// fallbackCharsPerToken is the estimate used when no codec applies.
	fallbackCharsPerToken = 4
)

// Counter estimates prompt tokens for a provider request.
type Counter struct {
	codec tokenizer.Codec
}

// NewCounter creates a counter. The cl100k codec is loaded once; if it
// cannot be initialized the counter silently degrades to estimation.
func NewCounter() *Counter {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		codec = nil
	}
	return &Counter{codec: codec}
}

// CountRequest estimates the token footprint of a completion request for
// the given provider.
func (c *Counter) CountRequest(id domain.ProviderID, req *domain.CompletionRequest) int {
	exact := c.codec != nil && usesCl100k(id)

	total := primingTokens
	for _, msg := range req.Messages() {
		total += tokensPerMessage + tokensPerRole
		if exact {
			ids, _, err := c.codec.Encode(msg.Content)
			if err == nil {
				total += len(ids)
				continue
			}
		}
		total += len(msg.Content) / fallbackCharsPerToken
	}
	return total
}

// usesCl100k reports whether the provider's model tokenizes with
// cl100k_base.
func usesCl100k(id domain.ProviderID) bool {
	return id == domain.ProviderGPT4 || id == domain.ProviderDeepSeek
}
