package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned for an unsupported LLM backend.
var ErrUnknownBackend = errors.New("unknown llm backend")

// Completer answers a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	// Name identifies the backend and model.
	Name() string
}

// Config selects and configures an LLM backend.
type Config struct {
	Backend     string
	Model       string
	BaseURL     string
	APIKey      string
	MaxTokens   int
	Temperature float64
	// Project and Location select a Vertex AI deployment for the google backend.
	Project  string
	Location string
}

// Defaults for answer generation.
const (
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.2
)

// New creates the completer named by cfg.Backend.
func New(ctx context.Context, cfg Config) (Completer, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	switch strings.ToLower(cfg.Backend) {
	case "ollama":
		return NewOllamaChat(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	case "google":
		return NewGoogle(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
