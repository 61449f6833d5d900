// Package markdown renders post content to sanitized HTML. Posts store raw
// Markdown; everything leaving the API as HTML passes through here.
package markdown

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to sanitized HTML. It is safe for concurrent
// use; build one at startup and share it.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer builds the shared renderer. GFM covers tables, strikethrough
// and autolinks; the UGC policy strips scripts and event handlers while
// keeping ordinary formatting. The <mark> tag is allowed so highlighted
// search snippets survive sanitization.
func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("mark")

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: policy,
	}
}

// Render converts source Markdown into sanitized HTML. Rendering failures
// fall back to the escaped plain text rather than erroring the request.
func (r *Renderer) Render(source string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		slog.Warn("markdown render failed, falling back to plain text", "error", err)
		return r.policy.Sanitize(source)
	}
	return r.policy.Sanitize(buf.String())
}

// Preview renders a truncated excerpt of source. The raw Markdown is cut at
// limit runes with an ellipsis before rendering, matching how listings show
// the opening of a post rather than the full body.
func (r *Renderer) Preview(source string, limit int) string {
	runes := []rune(source)
	if len(runes) > limit {
		source = string(runes[:limit]) + "..."
	}
	return strings.TrimSpace(r.Render(source))
}
