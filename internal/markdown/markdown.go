// Package markdown renders model answers (hints, generated SQL) for display.
package markdown

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	tagPattern = regexp.MustCompile(`<[^>]*>`)
)

// ToHTML renders source as HTML. Raw HTML in the source is not passed through.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToPlainText drops all markup, so a fenced SQL answer becomes bare SQL.
func ToPlainText(source string) (string, error) {
	rendered, err := ToHTML(source)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(tagPattern.ReplaceAllString(rendered, ""))
	return html.UnescapeString(text), nil
}
