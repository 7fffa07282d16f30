// ABOUTME: Markdown to HTML rendering for task descriptions
// ABOUTME: Uses goldmark with GitHub-flavored extensions; raw HTML in the source is dropped

package tasks

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts task descriptions from markdown to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with tables, strikethrough, task lists
// and autolinks enabled.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Render converts src to HTML.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}
