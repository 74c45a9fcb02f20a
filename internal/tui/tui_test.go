package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codedoc/internal/chunker"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "message": "codedoc is running"})
	})
	mux.HandleFunc("POST /ingest", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["directory"] == "/missing" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"detail": "directory /missing: not found"})
			return
		}
		json.NewEncoder(w).Encode(IngestResponse{Status: "success", FilesProcessed: 2, Chunks: 3})
	})
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil || header.Filename != "repo.zip" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(IngestResponse{Status: "success", FilesProcessed: 1, Chunks: 1})
	})
	mux.HandleFunc("POST /ask", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AskResponse{
			Answer:  "main calls helper.",
			Context: []chunker.Chunk{{FilePath: "b.py", ChunkType: chunker.TypeFunction, Name: "main"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	srv := fakeServer(t)
	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	msg, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "codedoc is running", msg)

	resp, err := c.Ingest(ctx, "/src")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.FilesProcessed)
	assert.Equal(t, 3, resp.Chunks)

	_, err = c.Ingest(ctx, "/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory /missing: not found")

	zipPath := filepath.Join(t.TempDir(), "repo.zip")
	require.NoError(t, os.WriteFile(zipPath, []byte("PK"), 0o644))
	resp, err = c.Upload(ctx, zipPath)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.FilesProcessed)

	answer, err := c.Ask(ctx, "what does main do?")
	require.NoError(t, err)
	assert.Equal(t, "main calls helper.", answer.Answer)
	require.Len(t, answer.Context, 1)
	assert.Equal(t, "main", answer.Context[0].Name)
}

func TestClientServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Health(context.Background())
	assert.Error(t, err)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSetupModeSelection(t *testing.T) {
	m := newSetupModel()
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))
	assert.False(t, m.choosing)
	assert.Equal(t, modeUpload, m.mode)

	m.input.SetValue("project.tar")
	m, _ = m.Update(key("enter"))
	assert.False(t, m.done)
	assert.Contains(t, m.err, ".zip")

	m, _ = m.Update(key("esc"))
	assert.True(t, m.choosing)
}

func TestSetupDirectory(t *testing.T) {
	dir := t.TempDir()
	m := newSetupModel()
	m, _ = m.Update(key("enter"))
	require.Equal(t, modeDirectory, m.mode)

	m.input.SetValue(dir)
	m, _ = m.Update(key("enter"))
	assert.True(t, m.done)
	assert.Equal(t, dir, m.path)
}

func TestSetupSkipToChat(t *testing.T) {
	m := newSetupModel()
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))
	assert.True(t, m.done)
	assert.Equal(t, modeChat, m.mode)
}

func TestValidateUploadPath(t *testing.T) {
	_, err := validatePath(modeUpload, filepath.Join(t.TempDir(), "absent.zip"))
	assert.Error(t, err)
	_, err = validatePath(modeDirectory, "  ")
	assert.Error(t, err)
}

func TestChatContextToggle(t *testing.T) {
	m := newChatModel(NewClient("http://unused"))
	m.initViewport(80, 24)
	m, _ = m.Update(answerMsg{resp: &AskResponse{
		Answer:  "It calls helper.",
		Context: []chunker.Chunk{{FilePath: "b.py", ChunkIndex: 0, ChunkType: chunker.TypeFunction, Name: "main"}},
	}})

	collapsed := m.renderMessages()
	assert.Contains(t, collapsed, "1 context chunks")
	assert.NotContains(t, collapsed, "b.py (chunk 0)")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Contains(t, m.renderMessages(), "b.py (chunk 0) function main")
}

func TestChatIngestCommand(t *testing.T) {
	m := newChatModel(NewClient("http://unused"))
	m.initViewport(80, 24)
	m.input.SetValue("/ingest")
	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, openSetupMsg{}, cmd())
}

func TestModelFlow(t *testing.T) {
	srv := fakeServer(t)
	var m tea.Model = New(Config{ServerURL: srv.URL})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = m.Update(checkServer(NewClient(srv.URL))())
	assert.True(t, strings.Contains(m.View(), "Connected"))

	m, _ = m.Update(key("enter"))
	assert.Equal(t, ViewSetup, m.(Model).state)

	m, _ = m.Update(key("enter"))
	dir := t.TempDir()
	setup := m.(Model)
	setup.setup.input.SetValue(dir)
	m = setup
	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, ViewIndexing, m.(Model).state)

	m, _ = m.Update(runIngest(NewClient(srv.URL), modeDirectory, dir)())
	assert.Contains(t, m.View(), "Chunks: 3")

	m, _ = m.Update(key("enter"))
	assert.Equal(t, ViewChat, m.(Model).state)
}
