package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"codedoc/internal/index"
	"codedoc/internal/logging"
	"codedoc/internal/server"
	"codedoc/internal/tui"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagServerURL string
	flagLogFile   string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// runTUI opens the terminal UI against --server, or against an in-process
// server on a loopback port when none is given.
func runTUI() error {
	if err := redirectLogs(); err != nil {
		return err
	}
	if flagServerURL != "" {
		return tui.Run(tui.Config{ServerURL: flagServerURL})
	}

	ctx := rootCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	idx, err := index.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	srv := server.New(server.Config{UploadDir: cfg.UploadDir}, idx, log.Logger)
	go func() {
		if err := srv.Serve(l); err != nil {
			log.Error().Err(err).Msg("embedded server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return tui.Run(tui.Config{ServerURL: fmt.Sprintf("http://%s", l.Addr())})
}

// redirectLogs keeps log output off the alternate screen.
func redirectLogs() error {
	if flagLogFile == "" {
		zerolog.SetGlobalLevel(zerolog.Disabled)
		log.Logger = zerolog.Nop()
		return nil
	}
	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	_, err = logging.SetupWriter(f, cfg.LogLevel, false)
	return err
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&flagServerURL, "server", "", "codedoc server URL (default: start one in-process)")
		c.Flags().StringVar(&flagLogFile, "log-file", "", "write logs to this file while the UI runs")
	}
	rootCmd.AddCommand(tuiCmd)
}
