package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"codedoc/internal/chunker"
	"codedoc/internal/config"
	"codedoc/internal/embedder"
	"codedoc/internal/ingest"
	"codedoc/internal/llm"
	"codedoc/internal/store"
)

// Open builds the embedding, answering and storage backends described by
// cfg and returns an Indexer over them.
func Open(ctx context.Context, cfg *config.Config) (*Indexer, error) {
	emb, err := embedder.New(ctx, embedder.Config{
		Backend:    cfg.Embedding.Backend,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Project:    cfg.Google.Project,
		Location:   cfg.Google.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	completer, err := llm.New(ctx, llm.Config{
		Backend:     cfg.LLM.Backend,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Project:     cfg.Google.Project,
		Location:    cfg.Google.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}

	if cfg.VectorStore.Backend == "sqlite" && cfg.VectorStore.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.VectorStore.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	st, err := store.Open(ctx, store.Config{
		Backend:    cfg.VectorStore.Backend,
		Path:       cfg.VectorStore.Path,
		DSN:        cfg.VectorStore.DSN,
		Dimensions: emb.Dimensions(),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return New(Config{
		Chunker: chunker.Options{
			Strategy:     chunker.Strategy(cfg.ChunkingStrategy),
			ChunkSize:    cfg.ChunkSize,
			OverlapLines: cfg.ChunkOverlapLines,
		},
		Ingest: ingest.Options{
			Extensions: cfg.Extensions,
			IgnoreDirs: cfg.IgnoreDirs,
		},
		TopK:             cfg.TopK,
		MaxContextTokens: cfg.MaxContextTokens,
		Workers:          cfg.Workers,
		ResetOnIngest:    cfg.ResetOnIngest,
	}, st, emb, completer), nil
}
