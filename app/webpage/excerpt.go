package webpage

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
)

const defaultExcerptLength = 300

type ExcerptExtractor struct {
	maxLength int
}

func NewExcerptExtractor(maxLength int) *ExcerptExtractor {
	if maxLength <= 0 {
		maxLength = defaultExcerptLength
	}
	return &ExcerptExtractor{maxLength: maxLength}
}

// Run derives a plain-text excerpt of the main content of an HTML document.
func (e *ExcerptExtractor) Run(data []byte, pageURL *url.URL) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := collapseSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Excerpt extracted",
		"title", article.Title,
		"content_length", len(text))

	return truncateWords(text, e.maxLength), nil
}

// truncateWords cuts s to at most max runes, at a word boundary when possible.
func truncateWords(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
