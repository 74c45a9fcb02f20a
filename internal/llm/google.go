package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGoogleModel = "gemini-2.0-flash"

// Google completes prompts with Gemini models through the Gemini API or
// Vertex AI.
type Google struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewGoogle uses Vertex AI when a project is configured and the Gemini API
// otherwise.
func NewGoogle(ctx context.Context, cfg Config) (*Google, error) {
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
	return &Google{client: client, model: model, maxTokens: cfg.MaxTokens, temperature: cfg.Temperature}, nil
}

func (g *Google) Name() string { return "google/" + g.model }

func (g *Google) Complete(ctx context.Context, prompt string) (string, error) {
	temp := float32(g.temperature)
	res, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(g.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", errors.New("genai returned an empty answer")
	}
	return text, nil
}
