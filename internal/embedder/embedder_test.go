package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), Config{Backend: "local-quantized"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestNewKnownBackends(t *testing.T) {
	e, err := New(context.Background(), Config{Backend: "Ollama", Model: "nomic-embed-text"})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", e.Name())
	assert.Equal(t, 768, e.Dimensions())

	e, err = New(context.Background(), Config{Backend: "openai", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", e.Name())
	assert.Equal(t, 1536, e.Dimensions())
}

func TestOllamaEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m", req.Model)

		resp := embedResponse{}
		for i := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(i), 1})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "m", 2)
	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}, {1, 1}}, vecs)

	vec, err := EmbedSingle(context.Background(), e, "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, vec)
}

func TestOllamaEmbedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaEmbedder(srv.URL, "missing", 0).Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
