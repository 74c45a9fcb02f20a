package embedder

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGoogleModel      = "text-embedding-005"
	defaultGoogleDimensions = 768
	googleMaxBatch          = 100
)

// GoogleEmbedder embeds texts with Gemini API or Vertex AI models.
type GoogleEmbedder struct {
	client *genai.Client
	model  string
	dims   int
}

// NewGoogleEmbedder uses Vertex AI when a project is configured and the
// Gemini API otherwise.
func NewGoogleEmbedder(ctx context.Context, cfg Config) (*GoogleEmbedder, error) {
	cc := genai.ClientConfig{Backend: genai.BackendGeminiAPI, APIKey: cfg.APIKey}
	if strings.TrimSpace(cfg.Project) != "" {
		cc = genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.Project,
			Location: cfg.Location,
		}
		if cc.Location == "" {
			cc.Location = "us-central1"
		}
	}
	client, err := genai.NewClient(ctx, &cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGoogleModel
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = defaultGoogleDimensions
	}
	return &GoogleEmbedder{client: client, model: model, dims: dims}, nil
}

func (e *GoogleEmbedder) Name() string    { return e.model }
func (e *GoogleEmbedder) Dimensions() int { return e.dims }

func (e *GoogleEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	dims := int32(e.dims)
	cfg := &genai.EmbedContentConfig{
		TaskType:             "RETRIEVAL_DOCUMENT",
		OutputDimensionality: &dims,
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += googleMaxBatch {
		batch := texts[start:min(start+googleMaxBatch, len(texts))]
		contents := make([]*genai.Content, len(batch))
		for i, t := range batch {
			contents[i] = genai.NewContentFromText(t, genai.RoleUser)
		}

		res, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
		if err != nil {
			return nil, fmt.Errorf("genai embed: %w", err)
		}
		if len(res.Embeddings) != len(batch) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(res.Embeddings))
		}
		for _, emb := range res.Embeddings {
			out = append(out, emb.Values)
		}
	}
	return out, nil
}
