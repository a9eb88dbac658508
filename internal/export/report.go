package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

// Unanswered is shown in place of a missing answer
const Unanswered = "(unanswered)"

// Content types of the generated documents
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeJSON = "application/json"
)

// Document is a rendered report ready to be downloaded or saved
type Document struct {
	FileName    string
	ContentType string
	Body        []byte
}

// QuizReport is everything a quiz report shows
type QuizReport struct {
	SourceFileName string
	Result         models.GenerationResult[models.QuizItem]
	Answers        models.Answers
	Score          models.Score
	GeneratedAt    time.Time
}

// ChallengeReport is everything a challenge review shows
type ChallengeReport struct {
	SourceFileName string
	Result         models.GenerationResult[models.Challenge]
	Code           models.Answers
	Outputs        map[int]string
	GeneratedAt    time.Time
}

// itemRow is one quiz item as the reports display it
type itemRow struct {
	Number        int
	Item          models.QuizItem
	UserAnswer    string
	Answered      bool
	Correct       bool
	ShowCorrect   bool
	CorrectAnswer string
}

func quizRows(r QuizReport) []itemRow {
	rows := make([]itemRow, 0, len(r.Result.Items))
	for i, it := range r.Result.Items {
		answer, answered := r.Answers[it.ID]
		correct := answered && answer == it.CorrectAnswer
		row := itemRow{
			Number:     i + 1,
			Item:       it,
			UserAnswer: answer,
			Answered:   answered,
			Correct:    correct,
		}
		if !answered {
			row.UserAnswer = Unanswered
		}
		if !correct {
			row.ShowCorrect = true
			row.CorrectAnswer = it.CorrectAnswer
		}
		rows = append(rows, row)
	}
	return rows
}

// reportFileName derives a download name from the uploaded file name
func reportFileName(source, suffix, ext string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "cv"
	}
	return fmt.Sprintf("%s_%s%s", base, suffix, ext)
}

// RenderJSON returns the raw generation result as an indented JSON download
func RenderJSON[T models.Item](source string, result models.GenerationResult[T]) (Document, error) {
	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return Document{}, fmt.Errorf("failed to encode result: %w", err)
	}
	return Document{
		FileName:    reportFileName(source, "result", ".json"),
		ContentType: ContentTypeJSON,
		Body:        body,
	}, nil
}
