package grader

import (
	"context"
	"errors"
	"fmt"

	genai "google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient grades text with Google's Gemini models.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: c, model: model}, nil
}

func (g *GeminiClient) Grade(ctx context.Context, system, payload string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(payload, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini api: %w", err)
	}
	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}

func (g *GeminiClient) Model() string {
	return g.model
}
