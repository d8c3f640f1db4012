package domain

import "context"

// ProviderID identifies one of the supported upstream completion providers.
// The set is closed; ids are stable and appear in API requests and stored
// conversation history.
type ProviderID string

const (
	ProviderGPT4     ProviderID = "gpt-4"
	ProviderClaude3  ProviderID = "claude-3"
	ProviderDeepSeek ProviderID = "deepseek"
)

// ProviderIDs lists every supported provider id.
func ProviderIDs() []ProviderID {
	return []ProviderID{ProviderGPT4, ProviderClaude3, ProviderDeepSeek}
}

// ValidProviderID reports whether id names a supported provider.
func ValidProviderID(id ProviderID) bool {
	switch id {
	case ProviderGPT4, ProviderClaude3, ProviderDeepSeek:
		return true
	}
	return false
}

// Message represents a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the normalized input to a provider.
// Providers send messages in the order: system instruction, history in
// original chronological order, then the new user prompt.
type CompletionRequest struct {
	System  string
	History []Message
	Prompt  string
}

// Messages flattens the request into ordered chat messages.
func (r *CompletionRequest) Messages() []Message {
	msgs := make([]Message, 0, len(r.History)+2)
	if r.System != "" {
		msgs = append(msgs, Message{Role: "system", Content: r.System})
	}
	msgs = append(msgs, r.History...)
	msgs = append(msgs, Message{Role: "user", Content: r.Prompt})
	return msgs
}

// Provider is one upstream completion service. Implementations normalize
// their vendor wire format to a single text-completion contract and fail
// only with *APIError.
type Provider interface {
	Name() string

	// Complete sends one prompt and returns the completion text.
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}
