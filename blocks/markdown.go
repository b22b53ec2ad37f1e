package blocks

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownRenderer converts rich-text block content authored as Markdown into
// HTML. Stateless; a single instance can be shared across requests.
type MarkdownRenderer struct {
	engine goldmark.Markdown
}

// NewMarkdownRenderer builds a renderer with GFM extensions, auto heading
// ids, and raw HTML passthrough, since rich-text sources mix Markdown with
// inline HTML.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		engine: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
			goldmark.WithExtensions(
				extension.GFM,
				extension.Linkify,
				extension.TaskList,
			),
		),
	}
}

// Render converts Markdown to HTML.
func (r *MarkdownRenderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("blocks: render markdown: %w", err)
	}
	return buf.String(), nil
}

// Apply rewrites the content of every rich-text block in place, keeping the
// typed view and the raw payload in sync.
func (r *MarkdownRenderer) Apply(list []Block) error {
	for i := range list {
		richtext, ok := list[i].Item.(RichText)
		if !ok {
			continue
		}
		rendered, err := r.Render(richtext.Content)
		if err != nil {
			return err
		}
		richtext.Content = rendered
		list[i].Item = richtext
		if list[i].Raw != nil {
			list[i].Raw["content"] = rendered
		}
	}
	return nil
}
