// Package markdown turns user-written markdown into HTML that is safe to send
// to a browser.
//
// Rendering is two stages and the order matters:
//
//  1. goldmark expands markdown to HTML. Raw HTML in the source is passed
//     through, so the output may contain anything the author typed.
//  2. bluemonday filters that HTML against an allow-list (the UGC policy):
//     scripts, event handler attributes, javascript: URLs, iframes, styles and
//     the like are removed; ordinary formatting survives.
//
// Only user content goes through here. Templates are trusted and are escaped by
// html/template instead.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown to sanitized HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New creates a Renderer with GitHub-flavoured markdown and the UGC policy.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithUnsafe(), // raw HTML passes through; stage 2 filters it
			),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render returns the sanitized HTML for src.
//
// The template.HTML conversion is the single place user content is marked as
// trusted markup, and it only ever wraps sanitizer output.
func (r *Renderer) Render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: converting: %w", err)
	}

	safe := r.policy.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
