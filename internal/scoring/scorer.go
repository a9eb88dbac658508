package scoring

import (
	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

// Band classifies a percentage for the results screen
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

const (
	// HighThreshold is the lowest percentage in the high band
	HighThreshold = 70
	// MediumThreshold is the lowest percentage in the medium band
	MediumThreshold = 50
)

// Score counts the items whose answer equals the expected answer exactly.
// Unanswered items count as wrong.
func Score(items []models.QuizItem, answers models.Answers) models.Score {
	s := models.Score{Total: len(items)}
	for _, it := range items {
		if a, ok := answers[it.ID]; ok && a == it.CorrectAnswer {
			s.Correct++
		}
	}
	return s
}

// BandFor places a percentage in its band
func BandFor(pct int) Band {
	switch {
	case pct >= HighThreshold:
		return BandHigh
	case pct >= MediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// Label is the message shown next to the score
func (b Band) Label() string {
	switch b {
	case BandHigh:
		return "Excellent result!"
	case BandMedium:
		return "Good work!"
	default:
		return "Keep improving!"
	}
}

// Summary bundles a score with its derived values
type Summary struct {
	models.Score
	Percentage    int    `json:"percentage"`
	HasPercentage bool   `json:"has_percentage"`
	Band          Band   `json:"band,omitempty"`
	Label         string `json:"label,omitempty"`
}

// Summarize derives the percentage and band of s
func Summarize(s models.Score) Summary {
	sum := Summary{Score: s}
	pct, ok := s.Percentage()
	if !ok {
		return sum
	}
	sum.Percentage, sum.HasPercentage = pct, true
	sum.Band = BandFor(pct)
	sum.Label = sum.Band.Label()
	return sum
}
