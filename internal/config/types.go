package config

// Config is the top-level codedoc configuration, corresponding to codedoc.yaml.
type Config struct {
	LogLevel  string `yaml:"log_level" koanf:"log_level"`
	LogPretty bool   `yaml:"log_pretty" koanf:"log_pretty"`

	ChunkSize         int    `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlapLines int    `yaml:"chunk_overlap_lines" koanf:"chunk_overlap_lines"`
	ChunkingStrategy  string `yaml:"chunking_strategy" koanf:"chunking_strategy"`

	TopK             int  `yaml:"top_k" koanf:"top_k"`
	MaxContextTokens int  `yaml:"max_context_tokens" koanf:"max_context_tokens"`
	Workers          int  `yaml:"workers" koanf:"workers"`
	ResetOnIngest    bool `yaml:"reset_on_ingest" koanf:"reset_on_ingest"`

	Extensions []string `yaml:"extensions" koanf:"extensions"`
	IgnoreDirs []string `yaml:"ignore_dirs" koanf:"ignore_dirs"`
	UploadDir  string   `yaml:"upload_dir" koanf:"upload_dir"`

	Server      ServerConfig      `yaml:"server" koanf:"server"`
	Embedding   EmbeddingConfig   `yaml:"embedding" koanf:"embedding"`
	LLM         LLMConfig         `yaml:"llm" koanf:"llm"`
	Google      GoogleConfig      `yaml:"google" koanf:"google"`
	VectorStore VectorStoreConfig `yaml:"vector_store" koanf:"vector_store"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int  `yaml:"port" koanf:"port"`
	CORSAllowAll bool `yaml:"cors_allow_all" koanf:"cors_allow_all"`
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	Backend    string `yaml:"backend" koanf:"backend"`
	Model      string `yaml:"model" koanf:"model"`
	Dimensions int    `yaml:"dimensions" koanf:"dimensions"`
	BaseURL    string `yaml:"base_url" koanf:"base_url"`
	APIKey     string `yaml:"api_key,omitempty" koanf:"api_key"`
}

// LLMConfig selects the answer-generation backend.
type LLMConfig struct {
	Backend     string  `yaml:"backend" koanf:"backend"`
	Model       string  `yaml:"model" koanf:"model"`
	BaseURL     string  `yaml:"base_url" koanf:"base_url"`
	APIKey      string  `yaml:"api_key,omitempty" koanf:"api_key"`
	MaxTokens   int     `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature float64 `yaml:"temperature" koanf:"temperature"`
}

// GoogleConfig selects a Vertex AI deployment for the google backends.
type GoogleConfig struct {
	Project  string `yaml:"project" koanf:"project"`
	Location string `yaml:"location" koanf:"location"`
}

// VectorStoreConfig selects the vector store backend.
type VectorStoreConfig struct {
	Backend string `yaml:"backend" koanf:"backend"`
	Path    string `yaml:"path" koanf:"path"`
	DSN     string `yaml:"dsn,omitempty" koanf:"dsn"`
}
