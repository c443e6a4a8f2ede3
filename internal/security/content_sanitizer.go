// Package security sanitizes user-authored lesson content before it is stored or shown.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans lesson HTML with an allow-list policy
type Sanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

// NewSanitizer builds the lesson content policy:
// text formatting, headings, lists, links, tables, code, quotes, images and dividers.
// Links always open in a new tab with rel="noopener noreferrer".
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "span", "strong", "em", "u", "s", "mark", "small", "sub", "sup",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"table", "thead", "tbody", "tfoot", "tr", "th", "td",
		"code", "pre", "blockquote", "hr", "div",
	)
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")

	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.AllowRelativeURLs(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("width", "height").Matching(bluemonday.Integer).OnElements("img")

	return &Sanitizer{
		rich:  p,
		plain: bluemonday.StrictPolicy(),
	}
}

// SanitizeHTML returns content with every disallowed tag and attribute removed
func (s *Sanitizer) SanitizeHTML(content string) string {
	if content == "" {
		return ""
	}
	return s.rich.Sanitize(content)
}

// SanitizeText strips all markup and returns plain text
func (s *Sanitizer) SanitizeText(content string) string {
	if content == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(content)))
}

var defaultSanitizer = NewSanitizer()

// SanitizeHTML cleans content with the shared lesson policy
func SanitizeHTML(content string) string {
	return defaultSanitizer.SanitizeHTML(content)
}

// SanitizeText strips all markup with the shared policy
func SanitizeText(content string) string {
	return defaultSanitizer.SanitizeText(content)
}
