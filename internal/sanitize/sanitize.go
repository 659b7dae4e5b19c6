// Package sanitize cleans identifiers and free text arriving from the CLI
// and MCP surfaces before they reach the store. It strips control
// characters and markup, restricts identifiers to a safe alphabet, and
// enforces length limits.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gamesoul/gamesoul/internal/models"
)

// MaxIDLength is the maximum allowed length for user and item identifiers.
const MaxIDLength = 128

// MaxTextLength is the maximum allowed length for names and descriptions.
const MaxTextLength = 500

// Pre-compiled regular expressions for performance.
var (
	// reXMLTag matches XML/HTML tags including those with attributes and self-closing tags.
	// It also matches XML processing instructions like <?xml ...?>.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	// reRepeatedHyphens matches 2 or more consecutive hyphens.
	reRepeatedHyphens = regexp.MustCompile(`-{2,}`)

	// reRepeatedUnderscores matches 2 or more consecutive underscores.
	reRepeatedUnderscores = regexp.MustCompile(`_{2,}`)

	// reWhitespace matches runs of whitespace.
	reWhitespace = regexp.MustCompile(`\s+`)
)

// ID sanitizes an identifier, keeping only [a-zA-Z0-9-_.:@], collapsing
// repeated hyphens and underscores, and enforcing MaxIDLength.
func ID(input string) string {
	if input == "" {
		return ""
	}

	// Keep only allowed characters.
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range strings.TrimSpace(input) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' || r == ':' || r == '@' {
			b.WriteRune(r)
		}
	}
	s := b.String()

	// Collapse repeated hyphens.
	s = reRepeatedHyphens.ReplaceAllString(s, "-")

	// Collapse repeated underscores.
	s = reRepeatedUnderscores.ReplaceAllString(s, "_")

	// Truncate to max length.
	if len(s) > MaxIDLength {
		s = s[:MaxIDLength]
	}

	return s
}

// ValidateID sanitizes input and fails with a validation error when nothing
// usable remains. kind names the identifier in the error ("user", "item").
func ValidateID(kind, input string) (string, error) {
	id := ID(input)
	if id == "" {
		return "", fmt.Errorf("%w: %s ID is required", models.ErrValidation, kind)
	}
	return id, nil
}

// Text sanitizes a name or description: control characters and markup are
// removed, whitespace is collapsed, and the result is truncated to MaxTextLength.
func Text(input string) string {
	if input == "" {
		return ""
	}

	s := stripControlChars(input)
	s = reXMLTag.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if len(s) > MaxTextLength {
		s = truncateRunes(s, MaxTextLength)
	}
	return s
}

// Characteristics normalizes dealbreaker or item characteristic tags:
// lowercased, sanitized as identifiers, empty and duplicate entries dropped.
func Characteristics(input []string) []string {
	if len(input) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(input))
	out := make([]string, 0, len(input))
	for _, raw := range input {
		c := strings.ToLower(ID(raw))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// stripControlChars removes ASCII control characters (0x00-0x1F) from the string,
// except for newline (0x0A) and tab (0x09) which are preserved.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}
