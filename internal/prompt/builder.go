package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

// ErrInvalidRequest is returned when generation parameters are out of range
var ErrInvalidRequest = errors.New("invalid generation request")

// Spec describes how one item variant is requested from the model
type Spec struct {
	Variant      models.Variant
	Role         string
	Analysis     string
	ItemNoun     string
	Mix          []string
	Schema       string
	Rules        []string
	FixedCount   int
	UsesSettings bool
}

// QuizSpec requests a personalised quiz
var QuizSpec = Spec{
	Variant:  models.VariantQuiz,
	Role:     "You are an expert recruiter who assesses candidates' skills.",
	Analysis: "Analyse every technical skill, professional experience, project, education entry and language mentioned in the CV.",
	ItemNoun: "questions",
	Mix: []string{
		"Technical questions about the skills mentioned",
		"Questions about experience and achievements",
		"Situational questions based on the profile",
		"Questions about the tools and technologies used",
		"Behavioral questions tied to past responsibilities",
	},
	Schema: `{
  "detected_language": "language of the CV, e.g. English or French",
  "profile_summary": "2-3 sentence summary of the profile",
  "top_skills": ["skill1", "skill2", "skill3", "skill4", "skill5"],
  "items": [
    {
      "id": 1,
      "question": "The question",
      "type": "multiple_choice | open | technical | situational",
      "options": ["option A", "option B", "option C", "option D"],
      "correct_answer": "the correct option, verbatim, or a model answer",
      "explanation": "why this is the answer and how it relates to the CV",
      "difficulty": "easy | medium | hard",
      "category": "technical | experience | behavioral"
    }
  ]
}`,
	Rules: []string{
		"Every question must relate directly to the content of the CV",
		"For multiple_choice questions, correct_answer must be one of the options, copied exactly",
		"For open questions, leave options as an empty array",
		"Number the items with id 1, 2, 3... in order",
	},
	UsesSettings: true,
}

// ChallengeSpec requests three programming challenges
var ChallengeSpec = Spec{
	Variant:  models.VariantChallenge,
	Role:     "You are an expert software engineer who runs technical interviews.",
	Analysis: "Analyse every technical skill, programming language, framework, project, education entry and language mentioned in the CV.",
	ItemNoun: "programming challenges",
	Mix: []string{
		"Progressive difficulty from beginner to advanced",
		"Each challenge tests a key skill from the CV",
		"Match the candidate's level and technical stack",
	},
	Schema: `{
  "detected_language": "language of the CV, e.g. English or French",
  "profile_summary": "2-3 sentence summary of the profile",
  "top_skills": ["skill1", "skill2", "skill3"],
  "items": [
    {
      "id": 1,
      "title": "Challenge title",
      "difficulty": "beginner | intermediate | advanced",
      "description": "Detailed description of the challenge",
      "key_concepts": "Technical concepts being tested",
      "solution_approach": "Pseudocode or outline of a solution",
      "category": "backend | frontend | fullstack | algorithm | database",
      "tests": ["test1", "test2", "test3"]
    }
  ]
}`,
	Rules: []string{
		"Challenges must relate directly to the skills in the CV",
		"Challenges must be realistic and really assess the candidate",
		"Number the items with id 1, 2, 3 in order",
	},
	FixedCount: models.ChallengeItemCount,
}

// Normalize checks the request against the spec and fills in defaults
func (s Spec) Normalize(req models.GenerationRequest) (models.GenerationRequest, error) {
	if strings.TrimSpace(req.SourceText) == "" {
		return req, fmt.Errorf("%w: source text is empty", ErrInvalidRequest)
	}

	if s.FixedCount > 0 {
		req.ItemCount = s.FixedCount
		req.Difficulty = ""
		return req, nil
	}

	if req.ItemCount == 0 {
		req.ItemCount = models.DefaultItemCount
	}
	if req.ItemCount < models.MinItemCount || req.ItemCount > models.MaxItemCount {
		return req, fmt.Errorf("%w: item count %d outside [%d, %d]",
			ErrInvalidRequest, req.ItemCount, models.MinItemCount, models.MaxItemCount)
	}

	if req.Difficulty == "" {
		req.Difficulty = models.DifficultyMixed
	}
	if !req.Difficulty.Valid() {
		return req, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRequest, req.Difficulty)
	}
	return req, nil
}

// BuildRequestText embeds the CV text into the variant's instructions
func (s Spec) BuildRequestText(doc models.ExtractedDocument, req models.GenerationRequest) (string, error) {
	req.SourceText = doc.RawText
	req, err := s.Normalize(req)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString(s.Role)
	sb.WriteString(fmt.Sprintf(" Analyse the following CV and generate %d personalised %s.\n\n", req.ItemCount, s.ItemNoun))

	sb.WriteString("## CV CONTENT\n")
	sb.WriteString(req.SourceText)
	sb.WriteString("\n\n")

	sb.WriteString("## INSTRUCTIONS\n")
	sb.WriteString(fmt.Sprintf("1. %s\n", s.Analysis))
	sb.WriteString(fmt.Sprintf("2. Create exactly %d %s, no more and no fewer\n", req.ItemCount, s.ItemNoun))
	step := 3
	if s.UsesSettings {
		sb.WriteString(fmt.Sprintf("%d. Difficulty: %s\n", step, req.Difficulty))
		step++
	}
	sb.WriteString(fmt.Sprintf("%d. Mix different kinds of %s:\n", step, s.ItemNoun))
	for _, m := range s.Mix {
		sb.WriteString(fmt.Sprintf("   - %s\n", m))
	}
	sb.WriteString("\n")

	sb.WriteString("## RESPONSE FORMAT (strict JSON)\n")
	sb.WriteString(s.Schema)
	sb.WriteString("\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Answer ONLY with a single JSON object, no text before or after it\n")
	sb.WriteString("- Write the summary and the items in the language of the CV\n")
	for _, r := range s.Rules {
		sb.WriteString(fmt.Sprintf("- %s\n", r))
	}

	return sb.String(), nil
}

// WantItems is the number of items a normalized request must produce
func (s Spec) WantItems(req models.GenerationRequest) int {
	if s.FixedCount > 0 {
		return s.FixedCount
	}
	return req.ItemCount
}
