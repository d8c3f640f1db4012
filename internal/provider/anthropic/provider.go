// Package anthropic adapts the Anthropic Messages API to the
// domain.Provider contract, serving the claude-3 provider id.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	anthropicapi "github.com/codevault-app/codevault/internal/api/anthropic"
	"github.com/codevault-app/codevault/internal/domain"
)

const (
	defaultModel       = "claude-3-sonnet-20240229"
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

// Provider implements domain.Provider against the Anthropic API.
type Provider struct {
	client     *anthropicapi.Client
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a new Anthropic provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{model: defaultModel}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []anthropicapi.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, anthropicapi.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, anthropicapi.WithHTTPClient(p.httpClient))
	}

	p.client = anthropicapi.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return string(domain.ProviderClaude3)
}

// Complete sends the request and extracts the completion text from
// content[0].text. The system instruction travels in the top-level system
// field; history keeps its chronological order.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (string, error) {
	apiReq := p.buildRequest(req)

	resp, err := p.client.CreateMessage(ctx, apiReq)
	if err != nil {
		var statusErr *anthropicapi.StatusError
		if errors.As(err, &statusErr) {
			return "", domain.ErrUpstream(p.Name(), statusErr.Detail())
		}
		return "", domain.ErrUpstream(p.Name(), err.Error())
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", domain.ErrUpstream(p.Name(), "response missing completion content").
			WithCode(domain.ErrorCodeMissingContent)
	}

	return text.String(), nil
}

func (p *Provider) buildRequest(req *domain.CompletionRequest) *anthropicapi.MessagesRequest {
	var messages []anthropicapi.Message
	system := req.System

	for _, m := range req.History {
		switch m.Role {
		case "system":
			// History should not carry system turns, but fold any into
			// the top-level system field rather than drop them.
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		default:
			messages = append(messages, anthropicapi.Message{Role: m.Role, Content: m.Content})
		}
	}
	messages = append(messages, anthropicapi.Message{Role: "user", Content: req.Prompt})

	temp := float32(defaultTemperature)
	return &anthropicapi.MessagesRequest{
		Model:       p.model,
		System:      system,
		Messages:    messages,
		MaxTokens:   defaultMaxTokens,
		Temperature: &temp,
	}
}
