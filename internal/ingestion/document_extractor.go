package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

const (
	// BinarySampleSize is the number of bytes to sample for binary detection
	BinarySampleSize = 1000
	// BinaryThreshold is the proportion of non-printable characters that indicates binary data
	BinaryThreshold = 0.3

	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrProviderNotReady  = errors.New("document provider not ready")
	ErrRead              = errors.New("failed to read document")
	ErrParse             = errors.New("failed to parse document")
)

// Upload is a document handed to the extractor
type Upload struct {
	FileName string
	MimeType string
	Content  io.Reader
}

// Extractor converts uploaded CVs into plain text
type Extractor struct {
	registry *Registry
}

// NewExtractor creates an extractor backed by the given capability registry
func NewExtractor(registry *Registry) *Extractor {
	return &Extractor{registry: registry}
}

// Registry exposes the capability registry, mainly for readiness checks
func (e *Extractor) Registry() *Registry {
	return e.registry
}

// Extract reads the upload and returns its text
func (e *Extractor) Extract(ctx context.Context, up Upload) (models.ExtractedDocument, error) {
	if up.Content == nil {
		return models.ExtractedDocument{}, fmt.Errorf("%w: %s has no content", ErrRead, up.FileName)
	}

	var data []byte
	kind, ok := DetectKind(up.MimeType, up.FileName)
	if !ok {
		if !undeclared(up) {
			return models.ExtractedDocument{}, unsupported(up)
		}
		// Nothing declared, sniff the content before giving up.
		var err error
		if data, err = io.ReadAll(up.Content); err != nil {
			return models.ExtractedDocument{}, fmt.Errorf("%w: %v", ErrRead, err)
		}
		if kind, ok = SniffKind(data); !ok {
			return models.ExtractedDocument{}, unsupported(up)
		}
	}

	provider, err := e.registry.Provider(kind)
	if err != nil {
		return models.ExtractedDocument{}, err
	}

	if data == nil {
		if data, err = io.ReadAll(up.Content); err != nil {
			return models.ExtractedDocument{}, fmt.Errorf("%w: %v", ErrRead, err)
		}
	}

	text, err := provider.ExtractText(ctx, data)
	if err != nil {
		return models.ExtractedDocument{}, fmt.Errorf("%w: %s extraction failed for %s: %v", ErrParse, kind.Label(), up.FileName, err)
	}

	if strings.TrimSpace(text) == "" {
		return models.ExtractedDocument{}, fmt.Errorf("%w: no text found in %s (scanned image?)", ErrParse, up.FileName)
	}

	return models.ExtractedDocument{
		SourceFileName: up.FileName,
		MimeKind:       kind,
		RawText:        text,
	}, nil
}

// undeclared reports whether the upload carries neither a useful MIME type nor an extension
func undeclared(up Upload) bool {
	mt, _, _ := mime.ParseMediaType(up.MimeType)
	return (mt == "" || mt == "application/octet-stream") && filepath.Ext(up.FileName) == ""
}

func unsupported(up Upload) error {
	labels := make([]string, 0, len(models.SupportedKinds))
	for _, k := range models.SupportedKinds {
		labels = append(labels, k.Label())
	}
	desc := up.MimeType
	if desc == "" {
		desc = filepath.Ext(up.FileName)
	}
	return fmt.Errorf("%w: %q (use %s)", ErrUnsupportedFormat, desc, strings.Join(labels, ", "))
}

// DetectKind resolves the document kind from the declared MIME type, then the file extension
func DetectKind(mimeType, fileName string) (models.MimeKind, bool) {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		switch mt {
		case mimePDF:
			return models.MimePDF, true
		case mimeDOCX:
			return models.MimeDOCX, true
		case mimeText:
			return models.MimePlainText, true
		}
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return models.MimePDF, true
	case ".docx":
		return models.MimeDOCX, true
	case ".txt":
		return models.MimePlainText, true
	}
	return "", false
}

// SniffKind guesses the document kind from its first bytes
func SniffKind(data []byte) (models.MimeKind, bool) {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return models.MimePDF, true
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return models.MimeDOCX, true
	case len(data) > 0 && !IsBinaryData(string(data)):
		return models.MimePlainText, true
	}
	return "", false
}

// IsBinaryData checks if content appears to be binary (PDF/ZIP markers)
func IsBinaryData(content string) bool {
	if len(content) == 0 {
		return false
	}

	// Check for PDF magic number
	if strings.HasPrefix(content, "%PDF-") {
		return true
	}

	// Check for ZIP magic number (DOCX files)
	if len(content) >= 2 && content[:2] == "PK" {
		return true
	}

	// Check for high proportion of non-printable characters
	sampleSize := min(BinarySampleSize, len(content))
	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		ch := content[i]
		if ch < 32 && ch != '\n' && ch != '\r' && ch != '\t' {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(sampleSize) > BinaryThreshold
}

// TextProvider returns plain text documents as they are
type TextProvider struct{}

// ExtractText implements Provider
func (TextProvider) ExtractText(ctx context.Context, data []byte) (string, error) {
	return sanitizeUTF8(string(data)), nil
}

// sanitizeUTF8 replaces invalid UTF-8 sequences so the text can be sent as JSON
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}
