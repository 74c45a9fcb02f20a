package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"codedoc/internal/archive"
	"codedoc/internal/chunker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ingestResponse struct {
	Status         string `json:"status"`
	FilesProcessed int    `json:"files_processed"`
	Chunks         int    `json:"chunks"`
}

type askResponse struct {
	Answer  string          `json:"answer"`
	Context []chunker.Chunk `json:"context"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: "codedoc is running"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	dir, err := param(r, "directory")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.ingest(w, r, dir)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("missing file"))
		return
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(header.Filename), ".zip") {
		writeError(w, http.StatusBadRequest, errors.New("only .zip archives are supported"))
		return
	}

	uploadDir := filepath.Join(s.cfg.UploadDir, uuid.New().String())
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		s.fail(w, r, err)
		return
	}
	zipPath := filepath.Join(uploadDir, filepath.Base(header.Filename))
	if err := saveUpload(file, zipPath); err != nil {
		s.fail(w, r, err)
		return
	}

	srcDir := filepath.Join(uploadDir, "src")
	n, err := archive.ExtractZip(zipPath, srcDir)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Str("file", header.Filename).Int("files", n).Msg("extracted upload")
	s.ingest(w, r, srcDir)
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request, dir string) {
	stats, err := s.svc.Index(r.Context(), dir, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		Status:         "success",
		FilesProcessed: stats.FilesIngested,
		Chunks:         stats.Chunks,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	query, err := param(r, "query")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	answer, err := s.svc.Ask(r.Context(), query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	chunks := answer.Context
	if chunks == nil {
		chunks = []chunker.Chunk{}
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer.Text, Context: chunks})
}

// fail logs err once and reports it as a 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, err)
}

// param reads a required parameter from a JSON body or form values.
func param(r *http.Request, name string) (string, error) {
	var value string
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", errors.New("invalid JSON body")
		}
		value, _ = body[name].(string)
	} else {
		value = r.FormValue(name)
	}
	if strings.TrimSpace(value) == "" {
		return "", errors.New("missing parameter: " + name)
	}
	return value, nil
}

func saveUpload(src io.Reader, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}
