package wizard

import (
	"context"
	"fmt"

	"github.com/fmuoria/CV-Assessment-agent/internal/llm"
	"github.com/fmuoria/CV-Assessment-agent/internal/models"
	"github.com/fmuoria/CV-Assessment-agent/internal/prompt"
)

// Deck is a generated result the controller can navigate
type Deck interface {
	Len() int
	IDAt(i int) int
}

// Strategy is everything that differs between the quiz and challenge wizards
type Strategy interface {
	Variant() models.Variant
	// SkipsConfigure reports whether generation starts right after upload
	SkipsConfigure() bool
	Spec() prompt.Spec
	// Generate runs one generation call and returns the validated result
	Generate(ctx context.Context, gen llm.Generator, doc models.ExtractedDocument, req models.GenerationRequest, opts llm.Options) (Deck, error)
}

// itemStrategy implements Strategy for one item type
type itemStrategy[T models.Item] struct {
	spec           prompt.Spec
	skipsConfigure bool
}

// QuizStrategy generates a configurable quiz
var QuizStrategy Strategy = itemStrategy[models.QuizItem]{spec: prompt.QuizSpec}

// ChallengeStrategy generates three coding challenges straight after upload
var ChallengeStrategy Strategy = itemStrategy[models.Challenge]{spec: prompt.ChallengeSpec, skipsConfigure: true}

// StrategyFor selects the strategy of a variant
func StrategyFor(v models.Variant) (Strategy, error) {
	switch v {
	case models.VariantQuiz:
		return QuizStrategy, nil
	case models.VariantChallenge:
		return ChallengeStrategy, nil
	}
	return nil, fmt.Errorf("%w: unknown variant %q", ErrValidation, v)
}

func (s itemStrategy[T]) Variant() models.Variant { return s.spec.Variant }
func (s itemStrategy[T]) SkipsConfigure() bool    { return s.skipsConfigure }
func (s itemStrategy[T]) Spec() prompt.Spec       { return s.spec }

func (s itemStrategy[T]) Generate(ctx context.Context, gen llm.Generator, doc models.ExtractedDocument, req models.GenerationRequest, opts llm.Options) (Deck, error) {
	req.SourceText = doc.RawText
	req, err := s.spec.Normalize(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	text, err := s.spec.BuildRequestText(doc, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	verboseLog("Requesting %d %s for %s (%d prompt chars)", req.ItemCount, s.spec.ItemNoun, doc.SourceFileName, len(text))

	raw, err := gen.GenerateContent(ctx, text, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	verboseLog("Received %d response chars", len(raw))

	result, err := prompt.ParseResponse[T](raw)
	if err != nil {
		return nil, err
	}
	if err := prompt.Validate(result, s.spec.WantItems(req)); err != nil {
		return nil, err
	}

	return &result, nil
}
