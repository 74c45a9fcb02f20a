package config

import (
	"runtime"

	"codedoc/internal/ingest"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "codedoc.yaml"

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		ChunkSize:         1000,
		ChunkOverlapLines: 4,
		ChunkingStrategy:  "auto",
		TopK:              5,
		MaxContextTokens:  2048,
		Workers:           runtime.NumCPU(),
		ResetOnIngest:     true,
		Extensions:        append([]string(nil), ingest.DefaultExtensions...),
		IgnoreDirs:        append([]string(nil), ingest.DefaultIgnoreDirs...),
		UploadDir:         "uploads",
		Server: ServerConfig{
			Port:         8000,
			CORSAllowAll: true,
		},
		Embedding: EmbeddingConfig{
			Backend: "ollama",
			Model:   "nomic-embed-text",
			BaseURL: "http://localhost:11434",
		},
		LLM: LLMConfig{
			Backend:     "ollama",
			Model:       "llama2",
			BaseURL:     "http://localhost:11434",
			MaxTokens:   512,
			Temperature: 0.2,
		},
		Google: GoogleConfig{
			Location: "us-central1",
		},
		VectorStore: VectorStoreConfig{
			Backend: "chromem",
			Path:    ".codedoc/chromem",
		},
	}
}
