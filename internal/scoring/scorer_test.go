package scoring

import (
	"testing"

	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

func TestScore(t *testing.T) {
	items := []models.QuizItem{
		{ID: 1, CorrectAnswer: "B"},
		{ID: 2, CorrectAnswer: "C"},
	}

	tests := []struct {
		name    string
		answers models.Answers
		want    models.Score
		wantPct int
	}{
		{
			name:    "One of two",
			answers: models.Answers{1: "B", 2: "D"},
			want:    models.Score{Correct: 1, Total: 2},
			wantPct: 50,
		},
		{
			name:    "All correct",
			answers: models.Answers{1: "B", 2: "C"},
			want:    models.Score{Correct: 2, Total: 2},
			wantPct: 100,
		},
		{
			name:    "Unanswered counts as wrong",
			answers: models.Answers{},
			want:    models.Score{Correct: 0, Total: 2},
			wantPct: 0,
		},
		{
			name:    "Exact match only",
			answers: models.Answers{1: "b", 2: " C"},
			want:    models.Score{Correct: 0, Total: 2},
			wantPct: 0,
		},
		{
			name:    "Answers for unknown ids are ignored",
			answers: models.Answers{1: "B", 9: "C"},
			want:    models.Score{Correct: 1, Total: 2},
			wantPct: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(items, tt.answers)
			if got != tt.want {
				t.Errorf("Score() = %+v, want %+v", got, tt.want)
			}
			pct, ok := got.Percentage()
			if !ok || pct != tt.wantPct {
				t.Errorf("Percentage() = (%d, %v), want (%d, true)", pct, ok, tt.wantPct)
			}
		})
	}
}

func TestScore_IsPure(t *testing.T) {
	items := []models.QuizItem{{ID: 1, CorrectAnswer: "A"}, {ID: 2, CorrectAnswer: "B"}, {ID: 3, CorrectAnswer: "C"}}
	answers := models.Answers{1: "A", 3: "X"}

	first := Score(items, answers)
	second := Score(items, answers)
	if first != second {
		t.Errorf("Score() not deterministic: %+v then %+v", first, second)
	}
	if first.Correct < 0 || first.Correct > first.Total {
		t.Errorf("Correct %d outside [0, %d]", first.Correct, first.Total)
	}
	if len(answers) != 2 || answers[3] != "X" {
		t.Errorf("Score() modified answers: %v", answers)
	}
}

func TestPercentage_NoItems(t *testing.T) {
	s := Score(nil, models.Answers{1: "A"})
	if s.Total != 0 || s.Correct != 0 {
		t.Fatalf("Expected empty score, got %+v", s)
	}
	if _, ok := s.Percentage(); ok {
		t.Error("Expected no percentage for an empty quiz")
	}

	sum := Summarize(s)
	if sum.HasPercentage || sum.Band != "" || sum.Label != "" {
		t.Errorf("Expected no band for an empty quiz, got %+v", sum)
	}
}

func TestPercentage_Rounding(t *testing.T) {
	tests := []struct {
		score models.Score
		want  int
	}{
		{score: models.Score{Correct: 1, Total: 3}, want: 33},
		{score: models.Score{Correct: 2, Total: 3}, want: 67},
		{score: models.Score{Correct: 7, Total: 8}, want: 88},
	}

	for _, tt := range tests {
		if got, _ := tt.score.Percentage(); got != tt.want {
			t.Errorf("%+v.Percentage() = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		pct       int
		want      Band
		wantLabel string
	}{
		{pct: 100, want: BandHigh, wantLabel: "Excellent result!"},
		{pct: 70, want: BandHigh, wantLabel: "Excellent result!"},
		{pct: 69, want: BandMedium, wantLabel: "Good work!"},
		{pct: 50, want: BandMedium, wantLabel: "Good work!"},
		{pct: 49, want: BandLow, wantLabel: "Keep improving!"},
		{pct: 0, want: BandLow, wantLabel: "Keep improving!"},
	}

	for _, tt := range tests {
		got := BandFor(tt.pct)
		if got != tt.want {
			t.Errorf("BandFor(%d) = %q, want %q", tt.pct, got, tt.want)
		}
		if got.Label() != tt.wantLabel {
			t.Errorf("BandFor(%d).Label() = %q, want %q", tt.pct, got.Label(), tt.wantLabel)
		}
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(models.Score{Correct: 4, Total: 5})
	if !sum.HasPercentage || sum.Percentage != 80 || sum.Band != BandHigh {
		t.Errorf("Unexpected summary %+v", sum)
	}
	if sum.Correct != 4 || sum.Total != 5 {
		t.Errorf("Summary lost the raw score: %+v", sum)
	}
}
