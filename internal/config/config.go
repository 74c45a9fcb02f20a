package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const envPrefix = "CODEDOC_"

// Load reads configuration from the given YAML file, then .env, then
// environment variable overrides (CODEDOC_*, with "__" separating nested
// keys: CODEDOC_EMBEDDING__BACKEND -> embedding.backend).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// Variables already set in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	// Lists replace the defaults wholesale; env values are comma-separated.
	if k.Exists("extensions") {
		cfg.Extensions = stringList(k, "extensions")
	}
	if k.Exists("ignore_dirs") {
		cfg.IgnoreDirs = stringList(k, "ignore_dirs")
	}

	cfg.resolveAPIKeys()
	return cfg, nil
}

func stringList(k *koanf.Koanf, key string) []string {
	if s, ok := k.Get(key).(string); ok {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return k.Strings(key)
}

// resolveAPIKeys falls back to the provider's conventional variable.
func (c *Config) resolveAPIKeys() {
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = os.Getenv(APIKeyEnvVar(c.Embedding.Backend))
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv(APIKeyEnvVar(c.LLM.Backend))
	}
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Write renders the configuration as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yamlv3.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	return enc.Close()
}

var (
	validStrategies    = map[string]bool{"auto": true, "ast": true, "lines": true}
	validModelBackends = map[string]bool{"ollama": true, "openai": true, "google": true}
	validStores        = map[string]bool{"chromem": true, "sqlite": true, "pgvector": true, "postgres": true}
	validLogLevels     = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true}
)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validStrategies[c.ChunkingStrategy] {
		return fmt.Errorf("invalid chunking_strategy %q: must be one of auto, ast, lines", c.ChunkingStrategy)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlapLines < 0 {
		return fmt.Errorf("chunk_overlap_lines must be non-negative")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.MaxContextTokens <= 0 {
		return fmt.Errorf("max_context_tokens must be positive")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}
	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if !validModelBackends[c.Embedding.Backend] {
		return fmt.Errorf("invalid embedding.backend %q: must be one of ollama, openai, google", c.Embedding.Backend)
	}
	if !validModelBackends[c.LLM.Backend] {
		return fmt.Errorf("invalid llm.backend %q: must be one of ollama, openai, google", c.LLM.Backend)
	}
	if !validStores[c.VectorStore.Backend] {
		return fmt.Errorf("invalid vector_store.backend %q: must be one of chromem, sqlite, pgvector", c.VectorStore.Backend)
	}
	if c.VectorStore.Backend == "sqlite" && c.VectorStore.Path == "" {
		return fmt.Errorf("vector_store.path is required for sqlite")
	}
	if (c.VectorStore.Backend == "pgvector" || c.VectorStore.Backend == "postgres") && c.VectorStore.DSN == "" {
		return fmt.Errorf("vector_store.dsn is required for pgvector")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given backend.
func APIKeyEnvVar(backend string) string {
	switch backend {
	case "openai":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}
