package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

func TestRenderHTML_SectionOrder(t *testing.T) {
	doc, err := RenderHTML(sampleReport())
	if err != nil {
		t.Fatalf("RenderHTML() failed: %v", err)
	}
	html := string(doc.Body)

	order := []string{
		"2026-03-01 10:30",
		"1 / 3",
		"33%",
		"Keep improving!",
		"Full-stack developer with Python and React.",
		"Which hook manages state?",
		"Which keyword defines a function in Python?",
		"Describe your last project.",
	}
	last := -1
	for _, s := range order {
		idx := strings.Index(html, s)
		if idx < 0 {
			t.Fatalf("Expected report to contain %q", s)
		}
		if idx < last {
			t.Errorf("%q appears out of order", s)
		}
		last = idx
	}

	if doc.FileName != "jane_doe_quiz_report.html" || doc.ContentType != ContentTypeHTML {
		t.Errorf("Unexpected document metadata: %q %q", doc.FileName, doc.ContentType)
	}
	if !strings.Contains(html, "@media print") {
		t.Error("Expected print styles")
	}
}

func TestRenderHTML_Answers(t *testing.T) {
	doc, err := RenderHTML(sampleReport())
	if err != nil {
		t.Fatalf("RenderHTML() failed: %v", err)
	}
	html := string(doc.Body)

	if !strings.Contains(html, Unanswered) {
		t.Error("Expected unanswered item to be marked")
	}

	// Item 1 is correct so its expected answer is not repeated; items 2 and 3 are wrong.
	if got := strings.Count(html, "Correct answer:"); got != 2 {
		t.Errorf("Expected 2 correct-answer lines, got %d", got)
	}
	if !strings.Contains(html, "Correct answer:</strong> def") {
		t.Error("Expected the correct answer of the wrong item")
	}
}

func TestRenderHTML_Bands(t *testing.T) {
	tests := []struct {
		name      string
		score     models.Score
		wantLabel string
		wantClass string
	}{
		{name: "High", score: models.Score{Correct: 7, Total: 10}, wantLabel: "Excellent result!", wantClass: "band-high"},
		{name: "Medium", score: models.Score{Correct: 1, Total: 2}, wantLabel: "Good work!", wantClass: "band-medium"},
		{name: "Low", score: models.Score{Correct: 0, Total: 5}, wantLabel: "Keep improving!", wantClass: "band-low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleReport()
			r.Score = tt.score
			doc, err := RenderHTML(r)
			if err != nil {
				t.Fatalf("RenderHTML() failed: %v", err)
			}
			html := string(doc.Body)
			if !strings.Contains(html, tt.wantLabel) {
				t.Errorf("Expected label %q", tt.wantLabel)
			}
			if !strings.Contains(html, `class="banner `+tt.wantClass+`"`) {
				t.Errorf("Expected banner class %q", tt.wantClass)
			}
		})
	}
}

func TestRenderHTML_EmptyQuizHasNoPercentage(t *testing.T) {
	r := sampleReport()
	r.Result.Items = nil
	r.Answers = models.Answers{}
	r.Score = models.Score{}

	doc, err := RenderHTML(r)
	if err != nil {
		t.Fatalf("RenderHTML() failed: %v", err)
	}
	html := string(doc.Body)
	if !strings.Contains(html, "0 / 0") {
		t.Error("Expected raw score")
	}
	if strings.Contains(html, "%</div>") {
		t.Error("Percentage should be omitted when there are no items")
	}
	if !strings.Contains(html, "band-none") {
		t.Error("Expected neutral banner")
	}
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	r := sampleReport()
	r.Result.ProfileSummary = "<script>alert(1)</script>"

	doc, err := RenderHTML(r)
	if err != nil {
		t.Fatalf("RenderHTML() failed: %v", err)
	}
	if strings.Contains(string(doc.Body), "<script>alert(1)</script>") {
		t.Error("Model output must be escaped")
	}
}

func TestRenderChallengeHTML(t *testing.T) {
	r := ChallengeReport{
		SourceFileName: "cv.docx",
		Result: models.GenerationResult[models.Challenge]{
			ProfileSummary: "Backend engineer",
			TopSkills:      []string{"Go"},
			Items: []models.Challenge{
				{ID: 1, Title: "FizzBuzz", Difficulty: models.LevelBeginner, Description: "Print numbers", TestDescriptions: []string{"15 gives FizzBuzz"}},
				{ID: 2, Title: "LRU cache", Difficulty: models.LevelIntermediate},
			},
		},
		Code:    models.Answers{1: "for (let i = 1; i <= 15; i++) {}"},
		Outputs: map[int]string{1: "Return value: 15"},
	}

	doc, err := RenderChallengeHTML(r)
	if err != nil {
		t.Fatalf("RenderChallengeHTML() failed: %v", err)
	}
	html := string(doc.Body)

	for _, want := range []string{"FizzBuzz", "LRU cache", "15 gives FizzBuzz", "i &lt;= 15", "Return value: 15", "(no code)"} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected challenge report to contain %q", want)
		}
	}
	if strings.Contains(html, "Keep improving") {
		t.Error("Challenge review has no score")
	}
	if doc.FileName != "cv_challenges.html" {
		t.Errorf("Unexpected file name %q", doc.FileName)
	}
}

func TestRenderJSON(t *testing.T) {
	r := sampleReport()
	doc, err := RenderJSON("cv.txt", r.Result)
	if err != nil {
		t.Fatalf("RenderJSON() failed: %v", err)
	}
	if doc.FileName != "cv_result.json" || doc.ContentType != ContentTypeJSON {
		t.Errorf("Unexpected document metadata: %q %q", doc.FileName, doc.ContentType)
	}

	var back models.GenerationResult[models.QuizItem]
	if err := json.Unmarshal(doc.Body, &back); err != nil {
		t.Fatalf("Body is not valid JSON: %v", err)
	}
	if len(back.Items) != 3 || back.Items[1].CorrectAnswer != "def" {
		t.Errorf("Unexpected round trip: %+v", back.Items)
	}
}
