// Package deepseek adapts the DeepSeek chat API to the domain.Provider
// contract. DeepSeek serves the OpenAI wire format, so the adapter reuses
// the OpenAI client against a different base URL.
package deepseek

import (
	"context"
	"net/http"

	openaiapi "github.com/codevault-app/codevault/internal/api/openai"
	"github.com/codevault-app/codevault/internal/domain"
	openaiprovider "github.com/codevault-app/codevault/internal/provider/openai"
)

const (
	defaultBaseURL     = "https://api.deepseek.com/v1"
	defaultModel       = "deepseek-chat"
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

// Provider implements domain.Provider against the DeepSeek API.
type Provider struct {
	client     *openaiapi.Client
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a new DeepSeek provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{baseURL: defaultBaseURL, model: defaultModel}
	for _, opt := range opts {
		opt(p)
	}

	clientOpts := []openaiapi.ClientOption{openaiapi.WithBaseURL(p.baseURL)}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, openaiapi.WithHTTPClient(p.httpClient))
	}

	p.client = openaiapi.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return string(domain.ProviderDeepSeek)
}

// Complete sends the request and extracts the completion text from
// choices[0].message.content, the same path OpenAI uses.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (string, error) {
	msgs := req.Messages()
	wire := make([]openaiapi.ChatMessage, len(msgs))
	for i, m := range msgs {
		wire[i] = openaiapi.ChatMessage{Role: m.Role, Content: m.Content}
	}

	temp := float32(defaultTemperature)
	apiReq := &openaiapi.ChatCompletionRequest{
		Model:       p.model,
		Messages:    wire,
		Temperature: &temp,
		MaxTokens:   defaultMaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return "", openaiprovider.NormalizeError(p.Name(), err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", domain.ErrUpstream(p.Name(), "response missing completion content").
			WithCode(domain.ErrorCodeMissingContent)
	}

	return resp.Choices[0].Message.Content, nil
}
