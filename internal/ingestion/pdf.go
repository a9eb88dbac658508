package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFProvider extracts the text fragments of every page of a PDF
type PDFProvider struct{}

// NewPDFProvider creates a PDF provider
func NewPDFProvider() *PDFProvider {
	return &PDFProvider{}
}

// ExtractText joins the fragments of a page with single spaces and the pages with newlines
func (p *PDFProvider) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}

		var fragments []string
		for _, row := range rows {
			for _, t := range row.Content {
				if t.S == "" {
					continue
				}
				fragments = append(fragments, t.S)
			}
		}
		pages = append(pages, strings.Join(fragments, " "))
	}

	return strings.Join(pages, "\n"), nil
}
