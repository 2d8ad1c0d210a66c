package utils

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

func init() {
	// Allow images
	policy.AllowImages()
	// Force links to open in new tab
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	// Add noopener or noreferrer and follow security best practices
	policy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts markdown content to sanitized HTML. The output is
// cached keyed by a hash of the source, so the cache can never serve a
// rendering of stale content.
func RenderMarkdown(source string) template.HTML {
	cacheKey := fmt.Sprintf("md:%x", sha256.Sum256([]byte(source)))
	if cached := GetCache().Get(cacheKey); cached != nil {
		if h, ok := cached.(template.HTML); ok {
			return h
		}
	}

	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source)) // Fallback
	}

	sanitized := template.HTML(policy.SanitizeBytes(buf.Bytes()))

	GetCache().Set(cacheKey, sanitized, 30*time.Minute)
	return sanitized
}
