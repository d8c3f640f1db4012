package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/codevault-app/codevault/internal/auth"
	"github.com/codevault-app/codevault/internal/config"
	"github.com/codevault-app/codevault/internal/domain"
	"github.com/codevault-app/codevault/internal/generate"
	"github.com/codevault-app/codevault/internal/provider"
	anthropicprovider "github.com/codevault-app/codevault/internal/provider/anthropic"
	deepseekprovider "github.com/codevault-app/codevault/internal/provider/deepseek"
	openaiprovider "github.com/codevault-app/codevault/internal/provider/openai"
	"github.com/codevault-app/codevault/internal/realtime"
	"github.com/codevault-app/codevault/internal/server"
	"github.com/codevault-app/codevault/internal/storage"
	"github.com/codevault-app/codevault/internal/storage/memory"
	"github.com/codevault-app/codevault/internal/storage/sqlite"
	"github.com/codevault-app/codevault/internal/telemetry"
	"github.com/codevault-app/codevault/internal/tokens"
	"github.com/codevault-app/codevault/internal/web"

	"github.com/go-chi/chi/v5"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdown, err := telemetry.InitTracer("codevault", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	registry := newRegistry(cfg, logger)

	genOpts := []generate.Option{
		generate.WithLogger(logger),
		generate.WithTokenCounter(tokens.NewCounter()),
		generate.WithCacheSize(cfg.Generation.CacheSize),
	}
	if cfg.Generation.SystemPrompt != "" {
		genOpts = append(genOpts, generate.WithSystemPrompt(cfg.Generation.SystemPrompt))
	}
	gen := generate.New(registry, genOpts...)

	hub := realtime.NewHub(logger)
	go hub.Run()
	defer hub.Shutdown()

	srv := server.New(cfg.Server.Port, logger)
	handler := web.NewHandler(store, gen, hub, logger)

	srv.Router.Get("/healthz", web.HandleHealth)
	srv.Router.Get("/ws", hub.ServeWS)

	srv.Router.Group(func(r chi.Router) {
		if keys := authKeys(cfg); len(keys) > 0 {
			r.Use(server.AuthMiddleware(auth.NewAuthenticator(keys)))
			logger.Info("API key authentication enabled", slog.Int("keys", len(keys)))
		}
		handler.Routes(r)
	})

	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Type == "memory" {
		return memory.New(), nil
	}
	return sqlite.New(cfg.Storage.SQLite.Path)
}

func newRegistry(cfg *config.Config, logger *slog.Logger) *provider.Registry {
	registry := provider.NewRegistry()

	if p := cfg.Providers.OpenAI; p.Enabled() {
		var opts []openaiprovider.Option
		if p.BaseURL != "" {
			opts = append(opts, openaiprovider.WithBaseURL(p.BaseURL))
		}
		if p.Model != "" {
			opts = append(opts, openaiprovider.WithModel(p.Model))
		}
		registry.Register(domain.ProviderGPT4, openaiprovider.New(p.APIKey, opts...))
	}

	if p := cfg.Providers.Anthropic; p.Enabled() {
		var opts []anthropicprovider.Option
		if p.BaseURL != "" {
			opts = append(opts, anthropicprovider.WithBaseURL(p.BaseURL))
		}
		if p.Model != "" {
			opts = append(opts, anthropicprovider.WithModel(p.Model))
		}
		registry.Register(domain.ProviderClaude3, anthropicprovider.New(p.APIKey, opts...))
	}

	if p := cfg.Providers.DeepSeek; p.Enabled() {
		var opts []deepseekprovider.Option
		if p.BaseURL != "" {
			opts = append(opts, deepseekprovider.WithBaseURL(p.BaseURL))
		}
		if p.Model != "" {
			opts = append(opts, deepseekprovider.WithModel(p.Model))
		}
		registry.Register(domain.ProviderDeepSeek, deepseekprovider.New(p.APIKey, opts...))
	}

	ids := registry.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	logger.Info("providers configured", slog.Any("providers", names))

	return registry
}

func authKeys(cfg *config.Config) []auth.Key {
	keys := make([]auth.Key, 0, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		if k.KeyHash == "" {
			continue
		}
		keys = append(keys, auth.Key{KeyHash: k.KeyHash, Description: k.Description})
	}
	return keys
}
