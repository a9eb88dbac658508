package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiClient calls the generative-language API with an API key
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a client authenticated with apiKey
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, modelName: model}, nil
}

// GenerateContent implements Generator
func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string, opts Options) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:     &opts.Temperature,
		TopK:            &opts.TopK,
		TopP:            &opts.TopP,
		MaxOutputTokens: &opts.MaxOutputTokens,
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	txt := firstText(resp)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}

// Close implements Generator
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
