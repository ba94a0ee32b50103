// Package extractor converts uploaded file bytes into plain text. Formats
// are dispatched on the filename extension; everything downstream of this
// package works on plain text only.
package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"docrag/internal/domain"
)

// FileExtractor dispatches to a format-specific reader by extension.
type FileExtractor struct{}

func New() *FileExtractor {
	return &FileExtractor{}
}

var mimeTypes = map[string]string{
	".txt":  "text/plain",
	".text": "text/plain",
	".md":   "text/markdown",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// MimeType reports the mimetype for a supported filename, or "" when the
// format has no extractor.
func MimeType(filename string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(filename))]
}

// Extract returns the plain text of data. Unknown extensions fail with
// domain.ErrUnsupportedFormat; a reader failing on its own format fails
// with domain.ErrExtraction.
func (e *FileExtractor) Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".text", ".md":
		return extractPlain(data), nil
	case ".pdf":
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, err)
		}
		return text, nil
	case ".docx":
		text, err := extractDOCX(data)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, err)
		}
		return text, nil
	case ".xlsx":
		text, err := extractXLSX(data)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filename)
	}
}

// extractPlain decodes text files, dropping a UTF-8 BOM and replacing
// invalid byte sequences rather than failing on them.
func extractPlain(data []byte) string {
	text := string(data)
	text = strings.TrimPrefix(text, "\ufeff")
	return strings.ToValidUTF8(text, "")
}
