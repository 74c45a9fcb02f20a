package cmd

import (
	"fmt"
	"os"

	"codedoc/internal/config"

	"github.com/spf13/cobra"
)

var flagForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the codedoc configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	// Skip loading a config that may not exist yet.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(flagConfig); err == nil && !flagForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", flagConfig)
		}
		if err := config.DefaultConfig().Save(flagConfig); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", flagConfig)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		shown.Embedding.APIKey = mask(shown.Embedding.APIKey)
		shown.LLM.APIKey = mask(shown.LLM.APIKey)
		return shown.Write(os.Stdout)
	},
}

func mask(key string) string {
	if key == "" {
		return ""
	}
	return "****"
}

func init() {
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
