package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fmuoria/CV-Assessment-agent/internal/scoring"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	answersSheet = "Answers"
)

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// bandColors are the fills used for score bands and per-answer results
var bandColors = map[scoring.Band]string{
	scoring.BandHigh:   "C6EFCE",
	scoring.BandMedium: "FFEB9C",
	scoring.BandLow:    "FFC7CE",
}

// RenderExcel returns the quiz workbook as a download
func RenderExcel(r QuizReport) (Document, error) {
	var buf bytes.Buffer
	if err := WriteExcel(&buf, r); err != nil {
		return Document{}, err
	}
	return Document{
		FileName:    reportFileName(r.SourceFileName, "quiz_report", ".xlsx"),
		ContentType: ContentTypeXLSX,
		Body:        buf.Bytes(),
	}, nil
}

// WriteExcel streams the quiz workbook to w
func WriteExcel(w io.Writer, r QuizReport) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func buildWorkbook(r QuizReport) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(answersSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create answers sheet: %w", err)
	}

	if err := createSummarySheet(f, summarySheet, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := createAnswersSheet(f, answersSheet, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create answers sheet: %w", err)
	}

	return f, nil
}

// createSummarySheet writes the score, band and profile of the candidate
func createSummarySheet(f *excelize.File, sheetName string, r QuizReport) error {
	f.SetColWidth(sheetName, "A", "A", 25)
	f.SetColWidth(sheetName, "B", "B", 60)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	row := 1
	label := func(name string, value any) {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), name)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), value)
		row++
	}

	// Title
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "CV Quiz Report")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	sum := scoring.Summarize(r.Score)
	label("CV File:", r.SourceFileName)
	label("Generated:", stamp(r.GeneratedAt))
	label("Language:", r.Result.DetectedLanguage)
	label("Score:", fmt.Sprintf("%d / %d", sum.Correct, sum.Total))
	if sum.HasPercentage {
		scoreRow := row
		label("Percentage:", fmt.Sprintf("%d%%", sum.Percentage))
		label("Result:", sum.Label)

		bandStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{bandColors[sum.Band]}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		f.SetCellStyle(sheetName, fmt.Sprintf("B%d", scoreRow), fmt.Sprintf("B%d", scoreRow+1), bandStyle)
	}
	row++

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Profile:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row++

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Summary:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Result.ProfileSummary)
	f.SetCellStyle(sheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), wrapStyle)
	f.SetRowHeight(sheetName, row, 60)
	row++

	label("Top Skills:", strings.Join(r.Result.TopSkills, ", "))

	return nil
}

// createAnswersSheet lists every item with the given and expected answers, colour-coded
func createAnswersSheet(f *excelize.File, sheetName string, r QuizReport) error {
	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "B", 60)
	f.SetColWidth(sheetName, "C", "E", 15)
	f.SetColWidth(sheetName, "F", "G", 35)
	f.SetColWidth(sheetName, "H", "H", 12)
	f.SetColWidth(sheetName, "I", "I", 60)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	rowStyle := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			Border:    thinBorder,
		})
	}
	correctStyle, err := rowStyle(bandColors[scoring.BandHigh])
	if err != nil {
		return err
	}
	wrongStyle, err := rowStyle(bandColors[scoring.BandLow])
	if err != nil {
		return err
	}

	headers := []string{"#", "Question", "Type", "Difficulty", "Category", "Your Answer", "Correct Answer", "Result", "Explanation"}
	for col, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	rows := quizRows(r)
	for i, it := range rows {
		row := i + 2
		result, style := "Wrong", wrongStyle
		if it.Correct {
			result, style = "Correct", correctStyle
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), it.Item.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), it.Item.Prompt)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), string(it.Item.Kind))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), string(it.Item.Difficulty))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), string(it.Item.Category))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), it.UserAnswer)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), it.Item.CorrectAnswer)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), result)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), it.Item.Explanation)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("I%d", row), style)
	}

	// Enable auto-filter
	if len(rows) > 0 {
		f.AutoFilter(sheetName, fmt.Sprintf("A1:I%d", len(rows)+1), []excelize.AutoFilterOptions{})
	}

	// Freeze top row
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}
