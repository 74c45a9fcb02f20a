package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 4, cfg.ChunkOverlapLines)
	assert.Equal(t, "auto", cfg.ChunkingStrategy)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 2048, cfg.MaxContextTokens)
	assert.True(t, cfg.ResetOnIngest)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "chromem", cfg.VectorStore.Backend)
	assert.Contains(t, cfg.Extensions, ".py")
	assert.Contains(t, cfg.IgnoreDirs, "node_modules")
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codedoc.yaml")

	original := DefaultConfig()
	original.ChunkSize = 400
	original.Extensions = []string{".go"}
	original.LLM.Backend = "openai"
	original.LLM.Model = "gpt-4o"
	original.VectorStore = VectorStoreConfig{Backend: "sqlite", Path: "index.db"}
	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 400, loaded.ChunkSize)
	assert.Equal(t, []string{".go"}, loaded.Extensions)
	assert.Equal(t, "openai", loaded.LLM.Backend)
	assert.Equal(t, "gpt-4o", loaded.LLM.Model)
	assert.Equal(t, "sqlite", loaded.VectorStore.Backend)
	assert.Equal(t, 2048, loaded.MaxContextTokens, "keys missing from the file keep defaults")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ChunkSize, cfg.ChunkSize)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CODEDOC_CHUNK_SIZE", "250")
	t.Setenv("CODEDOC_EMBEDDING__BACKEND", "openai")
	t.Setenv("CODEDOC_VECTOR_STORE__PATH", "/tmp/vectors")
	t.Setenv("CODEDOC_EXTENSIONS", ".py, .md")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.ChunkSize)
	assert.Equal(t, "openai", cfg.Embedding.Backend)
	assert.Equal(t, "sk-env", cfg.Embedding.APIKey)
	assert.Equal(t, "/tmp/vectors", cfg.VectorStore.Path)
	assert.Equal(t, []string{".py", ".md"}, cfg.Extensions)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown strategy", func(c *Config) { c.ChunkingStrategy = "semantic" }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.ChunkOverlapLines = -1 }},
		{"zero top k", func(c *Config) { c.TopK = 0 }},
		{"zero budget", func(c *Config) { c.MaxContextTokens = 0 }},
		{"local quantized llm", func(c *Config) { c.LLM.Backend = "local-quantized" }},
		{"unknown embedder", func(c *Config) { c.Embedding.Backend = "cohere" }},
		{"pinecone store", func(c *Config) { c.VectorStore.Backend = "pinecone" }},
		{"pgvector without dsn", func(c *Config) { c.VectorStore.Backend = "pgvector" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWrite(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, DefaultConfig().Write(&sb))
	assert.Contains(t, sb.String(), "chunk_overlap_lines: 4")
	assert.Contains(t, sb.String(), "backend: chromem")
}
