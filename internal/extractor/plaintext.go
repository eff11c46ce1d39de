package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// PlainTextExtractor reads already-digital text files. Markdown is stripped
// to plain prose so downstream line-wise translation does not mangle syntax.
type PlainTextExtractor struct{}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (e *PlainTextExtractor) Name() string {
	return "plaintext"
}

func (e *PlainTextExtractor) SupportsFormat(ext string) bool {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "txt", "md", "markdown":
		return true
	}
	return false
}

func (e *PlainTextExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	ext := filepath.Ext(path)
	if !e.SupportsFormat(ext) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "md", "markdown":
		return markdownToPlainText(data), nil
	default:
		return string(data), nil
	}
}

func markdownToPlainText(md []byte) string {
	opts := html.RendererOptions{Flags: html.CommonFlags}
	renderer := html.NewRenderer(opts)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(md)
	return stripHTMLTags(string(markdown.Render(doc, renderer)))
}

func stripHTMLTags(htmlContent string) string {
	var result strings.Builder
	inTag := false

	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return result.String()
}
