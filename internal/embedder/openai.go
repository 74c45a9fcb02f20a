package embedder

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel = "text-embedding-3-small"
	openAIMaxBatch     = 100
)

// OpenAIEmbedder generates embeddings with the OpenAI API or any
// OpenAI-compatible endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAIEmbedder creates an embedder. An empty baseURL uses api.openai.com.
func NewOpenAIEmbedder(apiKey, baseURL, model string, dims int) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dims:   dims,
	}
}

func (e *OpenAIEmbedder) Name() string { return e.model }

func (e *OpenAIEmbedder) Dimensions() int {
	if e.dims > 0 {
		return e.dims
	}
	switch e.model {
	case "text-embedding-3-large":
		return 3072
	default:
		return 1536
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += openAIMaxBatch {
		end := min(start+openAIMaxBatch, len(texts))
		batch := texts[start:end]

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      batch,
			Model:      openai.EmbeddingModel(e.model),
			Dimensions: e.dims,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embeddings: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(resp.Data))
		}

		vecs := make([][]float32, len(batch))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(batch) {
				return nil, fmt.Errorf("embedding index %d out of range", d.Index)
			}
			vecs[d.Index] = d.Embedding
		}
		out = append(out, vecs...)
	}
	return out, nil
}
