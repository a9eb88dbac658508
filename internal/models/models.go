package models

import (
	"fmt"
	"strings"
)

const (
	// MinItemCount is the smallest quiz a recruiter can request
	MinItemCount = 5
	// MaxItemCount is the largest quiz a recruiter can request
	MaxItemCount = 20
	// DefaultItemCount is preselected on the configure step
	DefaultItemCount = 10
	// ChallengeItemCount is fixed for the challenge variant
	ChallengeItemCount = 3
	// MaxTopSkills bounds the skills kept from a generation result
	MaxTopSkills = 5
)

// MimeKind identifies the supported upload formats
type MimeKind string

const (
	MimePDF       MimeKind = "pdf"
	MimeDOCX      MimeKind = "docx"
	MimePlainText MimeKind = "txt"
)

// SupportedKinds lists the upload formats in the order shown to users
var SupportedKinds = []MimeKind{MimePDF, MimeDOCX, MimePlainText}

// Label returns the short upper-case name used in messages
func (k MimeKind) Label() string {
	return strings.ToUpper(string(k))
}

// ExtractedDocument is the plain text pulled out of one uploaded CV
type ExtractedDocument struct {
	SourceFileName string   `json:"source_file_name"`
	MimeKind       MimeKind `json:"mime_kind"`
	RawText        string   `json:"raw_text"`
}

// Variant selects which kind of items a wizard session produces
type Variant string

const (
	VariantQuiz      Variant = "quiz"
	VariantChallenge Variant = "challenge"
)

// ParseVariant validates a variant name coming from a form or query string
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantQuiz, "":
		return VariantQuiz, nil
	case VariantChallenge:
		return VariantChallenge, nil
	default:
		return "", fmt.Errorf("unknown variant %q (want quiz or challenge)", s)
	}
}

// Step is a wizard screen
type Step string

const (
	StepUpload    Step = "upload"
	StepConfigure Step = "configure"
	StepInteract  Step = "interact"
	StepResults   Step = "results"
)

// GenerationRequest carries everything the prompt builder needs for one generation call
type GenerationRequest struct {
	SourceText string     `json:"source_text"`
	ItemCount  int        `json:"item_count"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
}

// QuizItem is one generated quiz question
type QuizItem struct {
	ID            int          `json:"id"`
	Prompt        string       `json:"question"`
	Kind          ItemKind     `json:"type"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Difficulty    Difficulty   `json:"difficulty"`
	Category      ItemCategory `json:"category"`
}

// ItemID implements Item
func (q QuizItem) ItemID() int { return q.ID }

// Challenge is one generated coding challenge
type Challenge struct {
	ID               int               `json:"id"`
	Title            string            `json:"title"`
	Difficulty       ChallengeLevel    `json:"difficulty"`
	Description      string            `json:"description"`
	KeyConcepts      string            `json:"key_concepts"`
	SolutionApproach string            `json:"solution_approach"`
	Category         ChallengeCategory `json:"category"`
	TestDescriptions []string          `json:"tests"`
}

// ItemID implements Item
func (c Challenge) ItemID() int { return c.ID }

// Item is the set of generated item variants a result can hold
type Item interface {
	QuizItem | Challenge
	ItemID() int
}

// GenerationResult is the structured answer of a generation call
type GenerationResult[T Item] struct {
	DetectedLanguage string   `json:"detected_language"`
	ProfileSummary   string   `json:"profile_summary"`
	TopSkills        []string `json:"top_skills"`
	Items            []T      `json:"items"`
}

// Len returns the number of generated items
func (r *GenerationResult[T]) Len() int { return len(r.Items) }

// IDAt returns the id of the item at position i
func (r *GenerationResult[T]) IDAt(i int) int { return r.Items[i].ItemID() }
