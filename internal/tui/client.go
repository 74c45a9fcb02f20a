package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codedoc/internal/chunker"
)

// IngestResponse is the reply to /ingest and /upload.
type IngestResponse struct {
	Status         string `json:"status"`
	FilesProcessed int    `json:"files_processed"`
	Chunks         int    `json:"chunks"`
}

// AskResponse is the reply to /ask.
type AskResponse struct {
	Answer  string          `json:"answer"`
	Context []chunker.Chunk `json:"context"`
}

// Client talks to a codedoc server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Minute},
	}
}

// Health checks that the server is up and returns its status message.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "", err
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Ingest asks the server to ingest a directory on its file system.
func (c *Client) Ingest(ctx context.Context, dir string) (*IngestResponse, error) {
	var out IngestResponse
	if err := c.postJSON(ctx, "/ingest", map[string]string{"directory": dir}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload sends a zip archive to be extracted and ingested.
func (c *Client) Upload(ctx context.Context, zipPath string) (*IngestResponse, error) {
	f, err := os.Open(zipPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(zipPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", zipPath, err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out IngestResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ask sends a question and returns the answer with its context chunks.
func (c *Client) Ask(ctx context.Context, question string) (*AskResponse, error) {
	var out AskResponse
	if err := c.postJSON(ctx, "/ask", map[string]string{"query": question}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect to codedoc server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Detail string `json:"detail"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Detail != "" {
			return fmt.Errorf("%s: %s", req.URL.Path, e.Detail)
		}
		return fmt.Errorf("%s returned %d", req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
