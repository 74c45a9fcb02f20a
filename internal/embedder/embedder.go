package embedder

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned for an unsupported embedding backend.
var ErrUnknownBackend = errors.New("unknown embedding backend")

// Embedder turns texts into vectors.
type Embedder interface {
	// Embed returns one vector per text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the vector length.
	Dimensions() int
	// Name returns the embedding model name.
	Name() string
}

// Config selects and configures an embedding backend.
type Config struct {
	Backend    string
	Model      string
	Dimensions int
	BaseURL    string
	APIKey     string
	// Project and Location select a Vertex AI deployment for the google backend.
	Project  string
	Location string
}

// New creates the embedder named by cfg.Backend.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	switch strings.ToLower(cfg.Backend) {
	case "ollama":
		return NewOllamaEmbedder(cfg.BaseURL, cfg.Model, cfg.Dimensions), nil
	case "openai":
		return NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimensions), nil
	case "google":
		return NewGoogleEmbedder(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// EmbedSingle embeds one text.
func EmbedSingle(ctx context.Context, e Embedder, text string) ([]float32, error) {
	results, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(results))
	}
	return results[0], nil
}
