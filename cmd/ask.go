package cmd

import (
	"os"
	"strings"

	"codedoc/internal/index"

	"github.com/spf13/cobra"
)

var flagSources bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question about the indexed codebase",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := index.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer idx.Close()

		answer, err := idx.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printAnswer(os.Stdout, answer, flagSources)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&flagSources, "sources", true, "list the chunks the answer was based on")
	rootCmd.AddCommand(askCmd)
}
