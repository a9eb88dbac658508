package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient generates content through the chat completions API
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client authenticated with apiKey
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is empty")
	}
	return newOpenAIClient(openai.DefaultConfig(apiKey), model), nil
}

func newOpenAIClient(cfg openai.ClientConfig, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}
}

// GenerateContent implements Generator. TopK has no chat completions equivalent and is ignored.
func (o *OpenAIClient) GenerateContent(ctx context.Context, prompt string, opts Options) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   int(opts.MaxOutputTokens),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Close implements Generator
func (o *OpenAIClient) Close() error {
	return nil
}
