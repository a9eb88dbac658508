package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

// ErrMalformedResponse is returned when the model's answer is not a usable generation result
var ErrMalformedResponse = errors.New("malformed generation response")

const fence = "```"

// StripFences removes a surrounding Markdown code fence, with or without a language tag.
// Text without a fence is only trimmed, so the function is idempotent.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		// The rest of the opening line is a language tag such as "json".
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[") {
				s = s[nl+1:]
			}
		} else {
			s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// wireResult mirrors GenerationResult with pointers so absent fields can be told apart from empty ones
type wireResult[T models.Item] struct {
	DetectedLanguage string    `json:"detected_language"`
	ProfileSummary   *string   `json:"profile_summary"`
	TopSkills        *[]string `json:"top_skills"`
	Items            *[]T      `json:"items"`
}

// ParseResponse decodes a model answer into a generation result of item type T
func ParseResponse[T models.Item](raw string) (models.GenerationResult[T], error) {
	text := StripFences(raw)
	if text == "" {
		return models.GenerationResult[T]{}, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var w wireResult[T]
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return models.GenerationResult[T]{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var missing []string
	if w.Items == nil {
		missing = append(missing, "items")
	}
	if w.ProfileSummary == nil {
		missing = append(missing, "profile_summary")
	}
	if w.TopSkills == nil {
		missing = append(missing, "top_skills")
	}
	if len(missing) > 0 {
		return models.GenerationResult[T]{}, fmt.Errorf("%w: missing %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}

	skills := *w.TopSkills
	if len(skills) > models.MaxTopSkills {
		skills = skills[:models.MaxTopSkills]
	}

	return models.GenerationResult[T]{
		DetectedLanguage: w.DetectedLanguage,
		ProfileSummary:   *w.ProfileSummary,
		TopSkills:        skills,
		Items:            *w.Items,
	}, nil
}

// Validate checks the item count and that ids run 1..N in order
func Validate[T models.Item](result models.GenerationResult[T], want int) error {
	if len(result.Items) != want {
		return fmt.Errorf("%w: expected %d items, got %d", ErrMalformedResponse, want, len(result.Items))
	}

	for i, it := range result.Items {
		if it.ItemID() != i+1 {
			return fmt.Errorf("%w: item %d has id %d", ErrMalformedResponse, i+1, it.ItemID())
		}
		if err := checkItem(it); err != nil {
			return fmt.Errorf("%w: item %d: %v", ErrMalformedResponse, i+1, err)
		}
	}
	return nil
}

func checkItem(it any) error {
	switch v := it.(type) {
	case models.QuizItem:
		if strings.TrimSpace(v.Prompt) == "" {
			return errors.New("empty question")
		}
	case models.Challenge:
		if strings.TrimSpace(v.Title) == "" {
			return errors.New("empty title")
		}
	}
	return nil
}
