package cli

import (
	"fmt"
	"time"

	"docrag/config"
	"docrag/internal/adapter/embedding"
	"docrag/internal/adapter/generator"
	"docrag/internal/adapter/store"
	"docrag/internal/port"
)

// openStore opens the configured vector store backend.
func openStore(cfg *config.Config) (port.VectorStore, error) {
	st, err := store.Open(cfg.Store.Type, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	return st, nil
}

// newEmbedder builds the embedding client from config.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	opts := embedding.Options{
		BatchSize:  cfg.Embedding.BatchSize,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Embedding.MaxRetries,
		Dimension:  cfg.Embedding.Dimension,
	}

	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.BaseURL != "" {
			return embedding.NewOpenAICompatibleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL, opts)
		}
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, opts)
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL, opts)
	case "mock":
		dim := cfg.Embedding.Dimension
		if dim <= 0 {
			dim = 64
		}
		return embedding.NewMockEmbedder(dim), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// newGenerator builds the answer generator, or nil when generation is
// disabled (the query answer is then the retrieved context itself).
func newGenerator(cfg *config.Config) (port.Generator, error) {
	if !cfg.Generation.Enabled {
		return nil, nil
	}
	return generator.NewOpenAIGenerator(
		cfg.Generation.APIKeyEnv,
		cfg.Generation.Model,
		cfg.Generation.BaseURL,
		cfg.Generation.SystemPrompt,
		time.Duration(cfg.Generation.TimeoutSecs)*time.Second,
	)
}
