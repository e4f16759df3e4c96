package util

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go-bookstore/pkg/apierror"
)

// Column widths of the users and books tables.
const (
	MaxUsernameLen      = 80
	MaxEmailLen         = 120
	MaxTitleLen         = 250
	MaxAuthorLen        = 200
	MaxPublishedDateLen = 50
)

// CleanText drops control and invisible characters and trims surrounding
// whitespace, so two values that render the same compare equal.
func CleanText(raw string) string {
	builder := strings.Builder{}
	builder.Grow(len(raw))

	for _, char := range raw {
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			continue
		}
		builder.WriteRune(char)
	}

	return strings.TrimSpace(builder.String())
}

// CheckLength rejects values longer than maxRunes characters.
func CheckLength(field string, value string, maxRunes int) error {
	if utf8.RuneCountInString(value) > maxRunes {
		return apierror.BadRequest(fmt.Sprintf("%s must be at most %d characters", field, maxRunes), field)
	}
	return nil
}

// isInvisibleUnicode returns true for zero-width, formatting, and other
// invisible Unicode characters.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // Zero-Width Space
		'\u200C', // Zero-Width Non-Joiner
		'\u200D', // Zero-Width Joiner
		'\u200E', // Left-to-Right Mark
		'\u200F', // Right-to-Left Mark
		'\u2060', // Word Joiner
		'\uFEFF', // Zero-Width No-Break Space / BOM
		'\uFFF9', // Interlinear Annotation Anchor
		'\uFFFA', // Interlinear Annotation Separator
		'\uFFFB': // Interlinear Annotation Terminator
		return true
	}

	// Unicode categories for format and non-characters
	return unicode.Is(unicode.Cf, r)
}
