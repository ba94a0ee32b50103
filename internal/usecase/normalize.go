package usecase

import (
	"regexp"
	"strings"
	"unicode"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// normalizeText prepares extracted text for chunking: line endings become
// \n, control characters other than newline and tab are dropped, and runs
// of blank lines (empty pages, form feeds) collapse to one blank line.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			sb.WriteRune(r)
		}
	}

	normalized := blankRuns.ReplaceAllString(sb.String(), "\n\n")
	return strings.TrimSpace(normalized)
}
