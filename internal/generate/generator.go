// Package generate sequences one generation request: validate, build the
// outgoing prompt, call the selected provider, extract the artifact bundle,
// and return bundle plus raw text. The raw completion is never discarded;
// it is the audit trail shown in chat history.
package generate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codevault-app/codevault/internal/artifact"
	"github.com/codevault-app/codevault/internal/domain"
	"github.com/codevault-app/codevault/internal/extract"
	"github.com/codevault-app/codevault/internal/provider"
	"github.com/codevault-app/codevault/internal/tokens"
)

// Request is one generation or modification call.
type Request struct {
	// Prompt is the user's natural-language request. For modify requests
	// it holds the modification instructions.
	Prompt string

	// Provider selects the upstream provider by stable id.
	Provider domain.ProviderID

	// History is prior conversation turns, oldest first. May be empty.
	History []domain.Message

	// Prior, when set, switches to the modify flow: the bundle is
	// serialized into the prompt and a brand-new bundle is produced.
	// Prior itself is never mutated.
	Prior *artifact.Bundle
}

// Result pairs the extracted bundle with the untouched provider text.
type Result struct {
	Bundle  artifact.Bundle
	RawText string
}

// Option configures the generator.
type Option func(*Generator)

// WithSystemPrompt overrides the default system instruction.
func WithSystemPrompt(prompt string) Option {
	return func(g *Generator) { g.systemPrompt = prompt }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithTokenCounter enables prompt token estimation logging.
func WithTokenCounter(counter *tokens.Counter) Option {
	return func(g *Generator) { g.counter = counter }
}

// WithCacheSize enables an LRU cache of raw completions keyed by the full
// outgoing request. Size 0 disables caching.
func WithCacheSize(size int) Option {
	return func(g *Generator) {
		if size <= 0 {
			return
		}
		cache, err := lru.New[string, string](size)
		if err == nil {
			g.cache = cache
		}
	}
}

// Generator is the generation orchestrator. It holds no per-request state;
// concurrent calls are independent.
type Generator struct {
	providers    *provider.Registry
	systemPrompt string
	extract      func(string) artifact.Bundle
	cache        *lru.Cache[string, string]
	counter      *tokens.Counter
	logger       *slog.Logger
}

// New creates a generator over the given provider registry.
func New(providers *provider.Registry, opts ...Option) *Generator {
	g := &Generator{
		providers:    providers,
		systemPrompt: DefaultSystemPrompt,
		extract:      extract.Extract,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs one request end to end. Validation failures surface as
// invalid_input before any network call; provider failures propagate
// unchanged, and the extractor is never run on a failed call. On success
// the result always carries a complete bundle, possibly with every field
// empty.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, domain.ErrInvalidInput("prompt is required").
			WithCode(domain.ErrorCodeEmptyPrompt)
	}
	if !domain.ValidProviderID(req.Provider) {
		return nil, domain.ErrInvalidInput(fmt.Sprintf("invalid model selected: %s", req.Provider)).
			WithCode(domain.ErrorCodeInvalidProvider)
	}

	prov, ok := g.providers.Get(req.Provider)
	if !ok {
		return nil, domain.ErrInvalidInput(fmt.Sprintf("provider %s is not configured", req.Provider)).
			WithCode(domain.ErrorCodeInvalidProvider)
	}

	prompt := req.Prompt
	if req.Prior != nil {
		prompt = modificationPrompt(*req.Prior, req.Prompt)
	}

	creq := &domain.CompletionRequest{
		System:  g.systemPrompt,
		History: req.History,
		Prompt:  prompt,
	}

	key := cacheKey(req.Provider, creq)
	if g.cache != nil {
		if raw, ok := g.cache.Get(key); ok {
			g.logger.Debug("completion cache hit",
				slog.String("provider", string(req.Provider)))
			return &Result{Bundle: g.extract(raw), RawText: raw}, nil
		}
	}

	if g.counter != nil {
		g.logger.Debug("dispatching completion",
			slog.String("provider", string(req.Provider)),
			slog.Int("prompt_tokens_estimate", g.counter.CountRequest(req.Provider, creq)))
	}

	start := time.Now()
	raw, err := prov.Complete(ctx, creq)
	if err != nil {
		g.logger.Warn("completion failed",
			slog.String("provider", string(req.Provider)),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, err
	}

	g.logger.Info("completion received",
		slog.String("provider", string(req.Provider)),
		slog.Duration("duration", time.Since(start)),
		slog.Int("response_chars", len(raw)))

	if g.cache != nil {
		g.cache.Add(key, raw)
	}

	return &Result{Bundle: g.extract(raw), RawText: raw}, nil
}

// Modify rewrites an existing bundle per the modification instructions.
// This is a thin wrapper over Generate: the new bundle fully replaces the
// old one, there is no field-level merging.
func (g *Generator) Modify(ctx context.Context, prior artifact.Bundle, instructions string, providerID domain.ProviderID) (*Result, error) {
	return g.Generate(ctx, Request{
		Prompt:   instructions,
		Provider: providerID,
		Prior:    &prior,
	})
}

// cacheKey hashes provider id, system prompt, history, and prompt. Caching
// the raw text is safe because extraction is pure.
func cacheKey(id domain.ProviderID, req *domain.CompletionRequest) string {
	h := sha256.New()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write([]byte(req.System))
	for _, m := range req.History {
		h.Write([]byte{0})
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
	}
	h.Write([]byte{0})
	h.Write([]byte(req.Prompt))
	return hex.EncodeToString(h.Sum(nil))
}
