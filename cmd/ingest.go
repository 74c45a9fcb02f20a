package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codedoc/internal/index"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var flagWorkers int

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest and index a directory or a single file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = flagWorkers
		}

		ctx := cmd.Context()
		idx, err := index.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer idx.Close()

		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Reading files"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		onProgress := func(stage string, done, total int) {
			bar.Describe(stage)
			if total > 0 {
				bar.ChangeMax(total)
			}
			_ = bar.Set(done)
		}

		fmt.Printf("Ingesting %s...\n", path)
		start := time.Now()

		var stats *index.Stats
		if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
			stats, err = idx.IndexFile(ctx, path, onProgress)
		} else {
			stats, err = idx.Index(ctx, path, onProgress)
		}
		_ = bar.Finish()
		if err != nil {
			return err
		}

		fmt.Printf("\nDone in %s\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("  Files:   %d\n", stats.FilesIngested)
		fmt.Printf("  Chunks:  %d\n", stats.Chunks)
		return nil
	},
}

func init() {
	ingestCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel embedding workers (default from config)")
	rootCmd.AddCommand(ingestCmd)
}
