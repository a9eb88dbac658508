package ingestion

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DOCXProvider returns the raw text of a Word document, formatting discarded
type DOCXProvider struct{}

// NewDOCXProvider creates a DOCX provider
func NewDOCXProvider() *DOCXProvider {
	return &DOCXProvider{}
}

// ExtractText implements Provider
func (p *DOCXProvider) ExtractText(ctx context.Context, data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return documentXMLToText(doc.Editable().GetContent())
}

// documentXMLToText walks word/document.xml keeping only run text.
// Paragraphs and breaks become newlines, tabs stay tabs.
func documentXMLToText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
