package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// FileHandler reads uploaded CVs and optionally keeps a copy on disk
type FileHandler struct {
	uploadsDir string
	maxBytes   int64
	keepCopies bool
}

// NewFileHandler creates a new file handler. A non-positive maxBytes disables the size check.
func NewFileHandler(uploadsDir string, maxBytes int64, keepCopies bool) *FileHandler {
	return &FileHandler{
		uploadsDir: uploadsDir,
		maxBytes:   maxBytes,
		keepCopies: keepCopies,
	}
}

// ReadUpload turns a multipart file into an Upload held in memory
func (fh *FileHandler) ReadUpload(header *multipart.FileHeader) (Upload, error) {
	file, err := header.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("%w: failed to open uploaded file: %v", ErrRead, err)
	}
	defer file.Close()

	return fh.Read(header.Filename, header.Header.Get("Content-Type"), file)
}

// Read buffers content, enforcing the size limit
func (fh *FileHandler) Read(filename, mimeType string, content io.Reader) (Upload, error) {
	r := content
	if fh.maxBytes > 0 {
		r = io.LimitReader(content, fh.maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Upload{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if fh.maxBytes > 0 && int64(len(data)) > fh.maxBytes {
		return Upload{}, fmt.Errorf("%w: %s is larger than %d bytes", ErrRead, filename, fh.maxBytes)
	}

	if fh.keepCopies {
		if _, err := fh.SaveUploadedFile(filename, bytes.NewReader(data)); err != nil {
			return Upload{}, err
		}
	}

	return Upload{
		FileName: filename,
		MimeType: mimeType,
		Content:  bytes.NewReader(data),
	}, nil
}

// SaveUploadedFile saves an uploaded file to the uploads directory
func (fh *FileHandler) SaveUploadedFile(filename string, content io.Reader) (string, error) {
	// Ensure uploads directory exists
	if err := os.MkdirAll(fh.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	filePath := filepath.Join(fh.uploadsDir, filepath.Base(filename))
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

// ClearUploads removes all files from the uploads directory
func (fh *FileHandler) ClearUploads() error {
	if err := os.RemoveAll(fh.uploadsDir); err != nil {
		return fmt.Errorf("failed to clear uploads directory: %w", err)
	}
	return os.MkdirAll(fh.uploadsDir, 0755)
}
