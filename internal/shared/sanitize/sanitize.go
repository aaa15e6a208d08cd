// Package sanitize strips markup from source ticket text before it is
// embedded in an LLM prompt.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer returns a sanitizer that removes all HTML elements,
// keeping only their text content. Service-desk descriptions and resolutions
// frequently arrive as HTML fragments from the upstream system.
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean strips tags, unescapes entities, and collapses surrounding
// whitespace.
func (s *TextSanitizer) Clean(text string) string {
	stripped := s.policy.Sanitize(text)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
