package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"codedoc/internal/index"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about your indexed codebase interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		idx, err := index.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer idx.Close()

		if n, err := idx.Count(ctx); err == nil && n == 0 {
			fmt.Println("The index is empty. Run 'codedoc ingest <path>' first.")
		}

		showSources := true
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("codedoc chat (type /help for commands, /exit to quit)")
		fmt.Println()

		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}

			switch question {
			case "/exit", "/quit":
				fmt.Println("Goodbye.")
				return nil
			case "/sources":
				showSources = !showSources
				fmt.Printf("Sources %s.\n", map[bool]string{true: "shown", false: "hidden"}[showSources])
				continue
			case "/help":
				fmt.Println("Commands:")
				fmt.Println("  /sources - toggle the context listing")
				fmt.Println("  /exit    - quit chat")
				fmt.Println("  /help    - show this help")
				continue
			}

			fmt.Println("[Searching...]")
			answer, err := idx.Ask(ctx, question)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}

			fmt.Println()
			printAnswer(os.Stdout, answer, showSources)
			fmt.Println()
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
