package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fmuoria/CV-Assessment-agent/internal/ingestion"
	"github.com/fmuoria/CV-Assessment-agent/internal/llm"
	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

const sampleCV = "Jane Doe\nSkills: Go, Python, React\n3 years experience"

// fakeGenerator returns canned responses in order, repeating the last one
type fakeGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	prompts   []string

	// when set, each call signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}

	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if len(f.responses) == 0 {
		return "", fmt.Errorf("no canned response")
	}
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func (f *fakeGenerator) Close() error { return nil }

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingNotifier keeps every event it receives
type recordingNotifier struct {
	mu     sync.Mutex
	events []map[string]any
	action []string
}

func (n *recordingNotifier) Notify(action string, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.action = append(n.action, action)
	n.events = append(n.events, payload)
}

func quizJSON(t *testing.T, n int) string {
	t.Helper()

	result := models.GenerationResult[models.QuizItem]{
		DetectedLanguage: "en",
		ProfileSummary:   "Full-stack developer",
		TopSkills:        []string{"Go", "Python", "React"},
	}
	for i := 1; i <= n; i++ {
		result.Items = append(result.Items, models.QuizItem{
			ID:            i,
			Prompt:        fmt.Sprintf("Question %d?", i),
			Kind:          models.KindMultipleChoice,
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "A",
			Explanation:   fmt.Sprintf("Because of %d", i),
			Difficulty:    models.DifficultyEasy,
			Category:      models.CategoryTechnical,
		})
	}

	b, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Failed to encode quiz: %v", err)
	}
	return "```json\n" + string(b) + "\n```"
}

func challengeJSON(t *testing.T) string {
	t.Helper()

	result := models.GenerationResult[models.Challenge]{
		DetectedLanguage: "en",
		ProfileSummary:   "Backend developer",
		TopSkills:        []string{"Go", "PostgreSQL"},
	}
	for i := 1; i <= models.ChallengeItemCount; i++ {
		result.Items = append(result.Items, models.Challenge{
			ID:               i,
			Title:            fmt.Sprintf("Challenge %d", i),
			Difficulty:       models.LevelIntermediate,
			Description:      "Write a function",
			KeyConcepts:      "loops",
			SolutionApproach: "iterate",
			Category:         models.ChallengeAlgorithm,
			TestDescriptions: []string{"returns 0 for empty input"},
		})
	}

	b, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Failed to encode challenges: %v", err)
	}
	return string(b)
}

func textRegistry() *ingestion.Registry {
	r := ingestion.NewRegistry()
	r.RegisterReady(models.MimePlainText, ingestion.TextProvider{})
	return r
}

func testDeps(gen llm.Generator) Dependencies {
	return Dependencies{
		Extractor: ingestion.NewExtractor(textRegistry()),
		Generator: gen,
		Now: func() time.Time {
			return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
		},
	}
}

func textUpload() ingestion.Upload {
	return ingestion.Upload{
		FileName: "cv.txt",
		MimeType: "text/plain",
		Content:  strings.NewReader(sampleCV),
	}
}

// newQuizInInteract returns a quiz session with n generated items
func newQuizInInteract(t *testing.T, n int) (*Controller, *fakeGenerator) {
	t.Helper()

	gen := &fakeGenerator{responses: []string{quizJSON(t, n)}}
	c := NewController("s1", QuizStrategy, testDeps(gen))
	ctx := context.Background()

	if err := c.Upload(ctx, textUpload()); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if err := c.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := c.Configure(models.GenerationRequest{ItemCount: n, Difficulty: models.DifficultyEasy}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := c.Generate(ctx); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return c, gen
}
