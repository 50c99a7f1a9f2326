// Package render turns transcript content into HTML for the chat page.
package render

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the source is dropped by goldmark's default (safe) renderer.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// Markdown converts markdown to sanitized HTML. If conversion fails, the
// escaped source is returned instead.
func Markdown(source string) template.HTML {
	if source == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		log.Warnf("[render] markdown conversion failed, using plain text: %v", err)
		return template.HTML("<p>" + html.EscapeString(source) + "</p>")
	}

	return template.HTML(strings.TrimSpace(buf.String()))
}
