package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codedoc/internal/chunker"
)

// ErrUnknownBackend is returned for an unsupported vector store backend.
var ErrUnknownBackend = errors.New("unknown vector store backend")

// VectorStore persists chunk embeddings and finds the nearest chunks.
type VectorStore interface {
	// Add stores chunks with their embeddings, replacing chunks with the
	// same id.
	Add(ctx context.Context, chunks []chunker.Chunk, embeddings [][]float32) error
	// Query returns up to topK chunks ordered by descending similarity.
	Query(ctx context.Context, embedding []float32, topK int) ([]Result, error)
	// DeleteAll removes every stored chunk.
	DeleteAll(ctx context.Context) error
	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
	// Close releases the store.
	Close() error
}

// MetaStore is implemented by stores that keep key-value metadata next to
// the vectors.
type MetaStore interface {
	// GetMeta returns a metadata value by key, or "" if not set.
	GetMeta(ctx context.Context, key string) (string, error)
	// SetMeta sets a metadata key-value pair.
	SetMeta(ctx context.Context, key, value string) error
}

// Config selects and configures a vector store backend.
type Config struct {
	Backend string
	// Path is the chromem persistence directory or the SQLite database
	// file. An empty chromem path keeps vectors in memory.
	Path string
	// DSN is the Postgres connection string for the pgvector backend.
	DSN        string
	Dimensions int
	Collection string
}

const defaultCollection = "code_chunks"

// Open creates the store named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (VectorStore, error) {
	if cfg.Collection == "" {
		cfg.Collection = defaultCollection
	}
	switch strings.ToLower(cfg.Backend) {
	case "chromem", "":
		return OpenChromem(cfg.Path, cfg.Collection)
	case "sqlite":
		return OpenSQLite(cfg.Path, cfg.Dimensions)
	case "pgvector", "postgres":
		return OpenPG(ctx, cfg.DSN, cfg.Collection, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

func checkLengths(chunks []chunker.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("mismatched chunks (%d) and embeddings (%d)", len(chunks), len(embeddings))
	}
	return nil
}
