package utils

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	// Comments are written by anonymous readers: no raw HTML, no images.
	commentMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	commentPolicy = bluemonday.UGCPolicy()

	// Article bodies come from the newsroom and may carry figures and embeds.
	articlePolicy = bluemonday.UGCPolicy()
)

func init() {
	commentPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	commentPolicy.RequireNoFollowOnLinks(true)
	commentPolicy.RequireNoReferrerOnLinks(true)

	articlePolicy.AllowImages()
	articlePolicy.AllowElements("figure", "figcaption")
	articlePolicy.AllowAttrs("class").OnElements("figure", "p", "span", "div")
	articlePolicy.AddTargetBlankToFullyQualifiedLinks(true)
	articlePolicy.RequireNoReferrerOnLinks(true)
}

// RenderComment turns reader-supplied text into safe HTML.
func RenderComment(source string) template.HTML {
	var buf bytes.Buffer
	if err := commentMarkdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(commentPolicy.SanitizeBytes(buf.Bytes()))
}

// RenderArticle sanitizes stored article HTML and applies EnhanceHTMLContent.
func RenderArticle(content string) template.HTML {
	return EnhanceHTMLContent(articlePolicy.Sanitize(content))
}
