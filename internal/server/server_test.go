package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codedoc/internal/chunker"
	"codedoc/internal/index"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	IndexFunc func(ctx context.Context, root string) (*index.Stats, error)
	AskFunc   func(ctx context.Context, question string) (*index.Answer, error)
}

func (m *mockService) Index(ctx context.Context, root string, _ index.ProgressFunc) (*index.Stats, error) {
	return m.IndexFunc(ctx, root)
}

func (m *mockService) Ask(ctx context.Context, question string) (*index.Answer, error) {
	return m.AskFunc(ctx, question)
}

func newTestServer(t *testing.T, svc Service) http.Handler {
	t.Helper()
	return New(Config{UploadDir: t.TempDir()}, svc, zerolog.Nop()).Handler()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &mockService{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestIngestForm(t *testing.T) {
	var got string
	h := newTestServer(t, &mockService{IndexFunc: func(_ context.Context, root string) (*index.Stats, error) {
		got = root
		return &index.Stats{FilesIngested: 2, Chunks: 5}, nil
	}})

	form := url.Values{"directory": {"/src/project"}}
	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/src/project", got)
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(2), body["files_processed"])
	assert.Equal(t, float64(5), body["chunks"])
}

func TestIngestJSON(t *testing.T) {
	h := newTestServer(t, &mockService{IndexFunc: func(_ context.Context, root string) (*index.Stats, error) {
		assert.Equal(t, "/src/project", root)
		return &index.Stats{}, nil
	}})

	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{"directory":"/src/project"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIngestMissingDirectory(t *testing.T) {
	h := newTestServer(t, &mockService{})
	req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["detail"], "directory")
}

func TestIngestFailure(t *testing.T) {
	h := newTestServer(t, &mockService{IndexFunc: func(context.Context, string) (*index.Stats, error) {
		return nil, errors.New("directory /nope: not found")
	}})
	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{"directory":"/nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "directory /nope: not found", decode(t, rec)["detail"])
}

func TestAsk(t *testing.T) {
	h := newTestServer(t, &mockService{AskFunc: func(_ context.Context, q string) (*index.Answer, error) {
		return &index.Answer{
			Text: "It calls helper.",
			Context: []chunker.Chunk{
				{Content: "def main(): ...", FilePath: "b.py", FileType: ".py", ChunkType: chunker.TypeFunction, Name: "main"},
			},
		}, nil
	}})

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"what does main do"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "It calls helper.", body["answer"])
	ctx, ok := body["context"].([]any)
	require.True(t, ok)
	require.Len(t, ctx, 1)
	assert.Equal(t, "b.py", ctx[0].(map[string]any)["file_path"])
}

func TestAskEmptyContextIsArray(t *testing.T) {
	h := newTestServer(t, &mockService{AskFunc: func(context.Context, string) (*index.Answer, error) {
		return &index.Answer{Text: "I don't know."}, nil
	}})
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("query=anything"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"context":[]`)
}

func TestAskMissingQuery(t *testing.T) {
	h := newTestServer(t, &mockService{})
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartZip(t *testing.T, filename string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var zipBuf bytes.Buffer
	zw := zip.NewWriter(&zipBuf)
	for name, content := range files {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(zipBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	uploads := t.TempDir()
	var root string
	svc := &mockService{IndexFunc: func(_ context.Context, r string) (*index.Stats, error) {
		root = r
		return &index.Stats{FilesIngested: 1, Chunks: 1}, nil
	}}
	h := New(Config{UploadDir: uploads}, svc, zerolog.Nop()).Handler()

	body, ct := multipartZip(t, "project.zip", map[string]string{"pkg/a.py": "def helper():\n    pass\n"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decode(t, rec)["files_processed"])
	assert.True(t, strings.HasPrefix(root, uploads))
	data, err := os.ReadFile(filepath.Join(root, "pkg", "a.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "def helper")
}

func TestUploadRejectsNonZip(t *testing.T) {
	h := newTestServer(t, &mockService{})
	body, ct := multipartZip(t, "project.tar", map[string]string{"a.py": ""})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadMissingFile(t *testing.T) {
	h := newTestServer(t, &mockService{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadTraversalFails(t *testing.T) {
	h := newTestServer(t, &mockService{})
	body, ct := multipartZip(t, "evil.zip", map[string]string{"../../evil.py": "x"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServeAndShutdown(t *testing.T) {
	srv := New(Config{}, &mockService{}, zerolog.Nop())
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-errCh)
}
