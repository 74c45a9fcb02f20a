package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codedoc/internal/config"
	"codedoc/internal/logging"

	"github.com/spf13/cobra"
)

var (
	flagConfig         string
	flagLogLevel       string
	flagEmbedding      string
	flagEmbeddingModel string
	flagLLM            string
	flagLLMModel       string
	flagStore          string
	flagStorePath      string
)

// cfg is the configuration loaded before every command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "codedoc",
	Short:         "Ask questions about a codebase with retrieval-augmented generation",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		_, err = logging.Setup(cfg.LogLevel, cfg.LogPretty)
		return err
	},
}

// applyFlags overrides configuration keys with explicitly set flags.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = flagLogLevel
	}
	if flags.Changed("embedding") {
		c.Embedding.Backend = flagEmbedding
	}
	if flags.Changed("embedding-model") {
		c.Embedding.Model = flagEmbeddingModel
	}
	if flags.Changed("llm") {
		c.LLM.Backend = flagLLM
	}
	if flags.Changed("llm-model") {
		c.LLM.Model = flagLLMModel
	}
	if flags.Changed("store") {
		c.VectorStore.Backend = flagStore
	}
	if flags.Changed("store-path") {
		c.VectorStore.Path = flagStorePath
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (runTUI refers to rootCmd).
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runTUI()
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", config.DefaultPath, "config file")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&flagEmbedding, "embedding", "", "embedding backend (ollama, openai, google)")
	pf.StringVar(&flagEmbeddingModel, "embedding-model", "", "embedding model")
	pf.StringVar(&flagLLM, "llm", "", "answering backend (ollama, openai, google)")
	pf.StringVar(&flagLLMModel, "llm-model", "", "answering model")
	pf.StringVar(&flagStore, "store", "", "vector store backend (chromem, sqlite, pgvector)")
	pf.StringVar(&flagStorePath, "store-path", "", "vector store directory or database file")
}
