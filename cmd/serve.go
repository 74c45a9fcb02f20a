package cmd

import (
	"context"
	"time"

	"codedoc/internal/index"
	"codedoc/internal/server"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var flagPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ingestion and question answering HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = flagPort
		}
		ctx := cmd.Context()
		idx, err := index.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer idx.Close()

		srv := server.New(server.Config{
			Port:      cfg.Server.Port,
			AllowAll:  cfg.Server.CORSAllowAll,
			UploadDir: cfg.UploadDir,
		}, idx, log.Logger)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&flagPort, "port", 8000, "listen port")
	rootCmd.AddCommand(serveCmd)
}
