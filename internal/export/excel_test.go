package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/fmuoria/CV-Assessment-agent/internal/models"
	"github.com/xuri/excelize/v2"
)

func sampleReport() QuizReport {
	return QuizReport{
		SourceFileName: "jane_doe.pdf",
		Result: models.GenerationResult[models.QuizItem]{
			DetectedLanguage: "English",
			ProfileSummary:   "Full-stack developer with Python and React.",
			TopSkills:        []string{"Python", "React"},
			Items: []models.QuizItem{
				{ID: 1, Prompt: "Which hook manages state?", Kind: models.KindMultipleChoice, Options: []string{"useState", "useMemo"}, CorrectAnswer: "useState", Explanation: "React basics", Difficulty: models.DifficultyEasy, Category: models.CategoryTechnical},
				{ID: 2, Prompt: "Which keyword defines a function in Python?", Kind: models.KindMultipleChoice, Options: []string{"func", "def"}, CorrectAnswer: "def", Difficulty: models.DifficultyEasy, Category: models.CategoryTechnical},
				{ID: 3, Prompt: "Describe your last project.", Kind: models.KindOpen, CorrectAnswer: "A clear STAR answer", Category: models.CategoryExperience},
			},
		},
		Answers:     models.Answers{1: "useState", 2: "func"},
		Score:       models.Score{Correct: 1, Total: 3},
		GeneratedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestRenderExcel_Contents(t *testing.T) {
	doc, err := RenderExcel(sampleReport())
	if err != nil {
		t.Fatalf("RenderExcel() failed: %v", err)
	}
	if doc.FileName != "jane_doe_quiz_report.xlsx" {
		t.Errorf("Unexpected file name %q", doc.FileName)
	}
	if doc.ContentType != ContentTypeXLSX {
		t.Errorf("Unexpected content type %q", doc.ContentType)
	}

	f, err := excelize.OpenReader(bytes.NewReader(doc.Body))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != summarySheet || sheets[1] != answersSheet {
		t.Fatalf("Unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows(answersSheet)
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected header and 3 item rows, got %d", len(rows))
	}

	tests := []struct {
		row        int
		wantAnswer string
		wantResult string
	}{
		{row: 1, wantAnswer: "useState", wantResult: "Correct"},
		{row: 2, wantAnswer: "func", wantResult: "Wrong"},
		{row: 3, wantAnswer: Unanswered, wantResult: "Wrong"},
	}
	for _, tt := range tests {
		if got := rows[tt.row][5]; got != tt.wantAnswer {
			t.Errorf("Row %d answer = %q, want %q", tt.row, got, tt.wantAnswer)
		}
		if got := rows[tt.row][7]; got != tt.wantResult {
			t.Errorf("Row %d result = %q, want %q", tt.row, got, tt.wantResult)
		}
	}

	summaryRows, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	found := false
	for _, r := range summaryRows {
		if len(r) >= 2 && r[0] == "Score:" && r[1] == "1 / 3" {
			found = true
		}
	}
	if !found {
		t.Error("Expected summary sheet to contain the score")
	}
}
