package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
	}{
		{name: "Unknown provider", settings: Settings{Provider: "llama"}},
		{name: "Gemini without key", settings: Settings{Provider: "gemini"}},
		{name: "Default provider without key", settings: Settings{}},
		{name: "OpenAI without key", settings: Settings{Provider: "OpenAI"}},
		{name: "Vertex without project", settings: Settings{Provider: "vertexai"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(context.Background(), tt.settings)
			if err == nil {
				gen.Close()
				t.Fatal("Expected an error")
			}
		})
	}
}

func TestOpenAIClient_GenerateContent(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"items\":[]}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	client := newOpenAIClient(cfg, "")

	text, err := client.GenerateContent(context.Background(), "make a quiz", Options{Temperature: 0.7, TopP: 0.95, MaxOutputTokens: 8192})
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}

	if text != `{"items":[]}` {
		t.Errorf("Unexpected text %q", text)
	}
	if got.Model != openai.GPT4o {
		t.Errorf("Expected default model %s, got %s", openai.GPT4o, got.Model)
	}
	if got.MaxTokens != 8192 {
		t.Errorf("Expected max tokens 8192, got %d", got.MaxTokens)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "make a quiz" {
		t.Errorf("Unexpected messages %+v", got.Messages)
	}
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"

	_, err := newOpenAIClient(cfg, "gpt-4o-mini").GenerateContent(context.Background(), "x", Options{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}
