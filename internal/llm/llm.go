package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when the model answers without any text
var ErrEmptyResponse = errors.New("no response candidates returned")

// Options are the sampling settings of one generation call
type Options struct {
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
}

// Generator sends one prompt to a generative-text model and returns its text answer
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, opts Options) (string, error)
	Close() error
}

// Provider names accepted by New
const (
	ProviderGemini   = "gemini"
	ProviderVertexAI = "vertexai"
	ProviderOpenAI   = "openai"
)

// Settings selects and configures a back-end
type Settings struct {
	Provider  string
	Model     string
	APIKey    string
	ProjectID string
	Location  string
}

// New creates the generator named by s.Provider, Gemini when empty
func New(ctx context.Context, s Settings) (Generator, error) {
	var (
		gen Generator
		err error
	)
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", ProviderGemini:
		gen, err = NewGeminiClient(ctx, s.APIKey, s.Model)
	case ProviderVertexAI:
		gen, err = NewVertexAIClient(ctx, s.ProjectID, s.Location, s.Model)
	case ProviderOpenAI:
		gen, err = NewOpenAIClient(s.APIKey, s.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want %s, %s or %s)", s.Provider, ProviderGemini, ProviderVertexAI, ProviderOpenAI)
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}
