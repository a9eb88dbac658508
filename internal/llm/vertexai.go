package llm

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// DefaultVertexModel is used when no model is configured
const DefaultVertexModel = "gemini-1.5-flash"

// VertexAIClient wraps the Vertex AI Gemini API
type VertexAIClient struct {
	client    *genai.Client
	modelName string
	projectID string
	location  string
}

// NewVertexAIClient creates a new Vertex AI client
func NewVertexAIClient(ctx context.Context, projectID, location, model string) (*VertexAIClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is not set")
	}
	if location == "" {
		location = "us-central1" // Default location
	}
	if model == "" {
		model = DefaultVertexModel
	}

	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexAIClient{
		client:    client,
		modelName: model,
		projectID: projectID,
		location:  location,
	}, nil
}

// GenerateContent sends a prompt to the model and returns the response
func (v *VertexAIClient) GenerateContent(ctx context.Context, prompt string, opts Options) (string, error) {
	model := v.client.GenerativeModel(v.modelName)
	model.SetTemperature(opts.Temperature)
	model.SetTopK(opts.TopK)
	model.SetTopP(opts.TopP)
	model.SetMaxOutputTokens(opts.MaxOutputTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}

	return result, nil
}

// Close closes the Vertex AI client
func (v *VertexAIClient) Close() error {
	return v.client.Close()
}
