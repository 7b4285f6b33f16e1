// Package text provides sanitization for chat lines arriving from the
// client event feed.
package text

import (
	"strings"
	"unicode"
)

// CleanLine normalizes an incoming chat line: control runes are dropped,
// runs of whitespace collapse to a single space, and leading and trailing
// whitespace is trimmed. Ideographic space (U+3000) is kept as-is since
// some clients use it as visible padding.
func CleanLine(line string) string {
	var b strings.Builder

	var space bool

	for _, r := range line {
		switch {
		case r == '　':
			b.WriteRune(r)

			space = false
		case unicode.IsSpace(r) || r == ' ':
			if !space {
				b.WriteRune(' ')

				space = true
			}
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)

			space = false
		}
	}

	return strings.TrimSpace(b.String())
}
