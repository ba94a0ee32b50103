package extractor

import (
	"bytes"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// extractDOCX reads the word document body. The library returns the raw
// document markup, so paragraph closes become newlines and the remaining
// tags are stripped.
func extractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	return stripTags(content), nil
}

func stripTags(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")

	var sb strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
