// Package openai adapts the OpenAI chat completions API to the
// domain.Provider contract, serving the gpt-4 provider id.
package openai

import (
	"context"
	"errors"
	"net/http"

	openaiapi "github.com/codevault-app/codevault/internal/api/openai"
	"github.com/codevault-app/codevault/internal/domain"
)

// Fixed tuning constants. These are provider defaults, not caller knobs:
// moderate creativity, generous but bounded output.
const (
	defaultModel       = "gpt-4"
	defaultTemperature = 0.7
	defaultMaxTokens   = 4000
)

// Option configures the provider.
type Option func(*Provider)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) { p.baseURL = baseURL }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(p *Provider) { p.httpClient = httpClient }
}

// WithModel overrides the upstream model name.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// Provider implements domain.Provider against the OpenAI API.
type Provider struct {
	client     *openaiapi.Client
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a new OpenAI provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{model: defaultModel}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []openaiapi.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, openaiapi.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, openaiapi.WithHTTPClient(p.httpClient))
	}

	p.client = openaiapi.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return string(domain.ProviderGPT4)
}

// Complete sends the request and extracts the completion text from
// choices[0].message.content.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (string, error) {
	apiReq := buildRequest(p.model, req)

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return "", NormalizeError(p.Name(), err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", domain.ErrUpstream(p.Name(), "response missing completion content").
			WithCode(domain.ErrorCodeMissingContent)
	}

	return resp.Choices[0].Message.Content, nil
}

// buildRequest maps the normalized request onto the OpenAI wire shape,
// preserving the system, history, prompt ordering.
func buildRequest(model string, req *domain.CompletionRequest) *openaiapi.ChatCompletionRequest {
	msgs := req.Messages()
	wire := make([]openaiapi.ChatMessage, len(msgs))
	for i, m := range msgs {
		wire[i] = openaiapi.ChatMessage{Role: m.Role, Content: m.Content}
	}

	temp := float32(defaultTemperature)
	return &openaiapi.ChatCompletionRequest{
		Model:       model,
		Messages:    wire,
		Temperature: &temp,
		MaxTokens:   defaultMaxTokens,
	}
}

// NormalizeError converts client failures into canonical upstream errors,
// keeping the provider's own error detail when the envelope parses. Shared
// with the DeepSeek adapter, which uses the same client.
func NormalizeError(name string, err error) error {
	var statusErr *openaiapi.StatusError
	if errors.As(err, &statusErr) {
		return domain.ErrUpstream(name, statusErr.Detail())
	}
	return domain.ErrUpstream(name, err.Error())
}
