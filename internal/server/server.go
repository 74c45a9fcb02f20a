// Package server exposes ingestion and question answering over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"codedoc/internal/index"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Service is the indexing and answering backend behind the routes.
type Service interface {
	Index(ctx context.Context, root string, onProgress index.ProgressFunc) (*index.Stats, error)
	Ask(ctx context.Context, question string) (*index.Answer, error)
}

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins
	// UploadDir receives one directory per uploaded archive.
	UploadDir      string
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

// Server serves the codedoc HTTP API.
type Server struct {
	cfg        Config
	svc        Service
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server for svc.
func New(cfg Config, svc Service, logger zerolog.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 256 << 20
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	s := &Server{cfg: cfg, svc: svc, logger: logger}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("dur", dur).
			Msg("http")
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/", s.handleHealth)
	r.Post("/ingest", s.handleIngest)
	r.Post("/upload", s.handleUpload)
	r.Post("/ask", s.handleAsk)
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve accepts connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info().Str("addr", l.Addr().String()).Msg("codedoc server listening")
	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
