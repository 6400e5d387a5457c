// Package security neutralizes script-capable markup in user-authored text.
package security

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Entries and comments are plain text that clients render as text, so angle
// brackets are kept: catalogue ids such as <M31> are ordinary content. Only
// elements that can run script or load active content are removed.
const riskyElements = `script|style|iframe|frame|frameset|object|embed|applet|noscript|template|svg|math|link|meta|base|form`

var (
	// a risky element with its body, e.g. <script>...</script>
	riskyBlock = regexp.MustCompile(`(?is)<(?:` + riskyElements + `)\b[^<>]*>.*?</(?:` + riskyElements + `)\s*>`)
	// a lone risky tag, or any tag carrying an event handler or a script URL
	riskyTag = regexp.MustCompile(`(?is)</?(?:` + riskyElements + `)\b[^<>]*>|<[a-z][a-z0-9-]*\b[^<>]*(?:\bon[a-z]+\s*=|javascript:|vbscript:)[^<>]*>`)
)

// Sanitizer removes dangerous markup from user text and leaves the rest as typed
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a sanitizer on bluemonday's strict policy, applied only
// to the spans recognized as risky.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text drops risky markup and surrounding whitespace
func (s *Sanitizer) Text(in string) string {
	if in == "" {
		return ""
	}
	out := riskyBlock.ReplaceAllStringFunc(in, s.strip)
	out = riskyTag.ReplaceAllStringFunc(out, s.strip)
	return strings.TrimSpace(out)
}

// strip runs a risky span through the strict policy. Raw-text elements such
// as script and style lose their body; other wrappers keep their inner text.
func (s *Sanitizer) strip(span string) string {
	return html.UnescapeString(s.policy.Sanitize(span))
}

// URL keeps only http(s) URLs, anything else becomes empty
func (s *Sanitizer) URL(in string) string {
	in = strings.TrimSpace(in)
	lower := strings.ToLower(in)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return in
	}
	return ""
}
