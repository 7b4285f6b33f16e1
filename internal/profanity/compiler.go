// Package profanity implements obfuscation-tolerant profanity detection.
// A plain word is compiled into a pattern that also recognises common
// evasions: leetspeak substitutions (c0nne), masked letters (c*nne),
// symbol fillers (c*o*n*n*e) and spacing (c o n n e).
package profanity

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// characterClasses maps each letter to the set of characters an evader may
// substitute for it: the letter itself, leetspeak digits and symbols,
// accented variants, and '*' as a generic mask.
var characterClasses = map[rune]string{
	'a': "[a@4àáâãäåx*]",
	'b': "[b8ß*]",
	'c': "[c¢©*]",
	'd': "[d*]",
	'e': "[e3€èéêëx*]",
	'f': "[f*]",
	'g': "[g9*]",
	'h': "[h*]",
	'i': "[i1!|ìíîïx*]",
	'j': "[j*]",
	'k': "[k*]",
	'l': "[l1|*]",
	'm': "[m*]",
	'n': "[nñ*]",
	'o': "[o0°òóôõöx*]",
	'p': "[p*]",
	'q': "[q*]",
	'r': "[r*]",
	's': "[s5$§*]",
	't': "[t7+*]",
	'u': "[uùúûüx*]",
	'v': "[v*]",
	'w': "[w*]",
	'x': "[x*]",
	'y': "[y¥*]",
	'z': "[z2*]",
}

// fillerClass matches characters commonly inserted between letters to defeat
// literal matching. Zero or more are tolerated between consecutive letters.
const fillerClass = `[x*_\-.\s]*`

// trailingFillerClass absorbs filler characters that are themselves word
// characters (x, _) after the final letter. Left unconsumed they would sit
// between the match and the closing \b and defeat the boundary assertion.
const trailingFillerClass = `[x_]*`

// ErrEmptyWord is returned when a blank word is handed to Compile. The index
// filters blank words out before compiling, so this is a defensive guard.
var ErrEmptyWord = errors.New("profanity: empty word")

// Compile builds a case-insensitive pattern recognising word and its
// obfuscated spellings. The pattern is anchored with word boundaries at both
// ends so a match never bleeds into adjacent unrelated letters. A literal
// space in the word requires one or more whitespace characters at match time.
func Compile(word string) (*regexp.Regexp, error) {
	if strings.TrimSpace(word) == "" {
		return nil, ErrEmptyWord
	}

	runes := []rune(strings.ToLower(word))

	var sb strings.Builder
	sb.WriteString(`(?i)\b`)

	for i, r := range runes {
		if unicode.IsSpace(r) {
			sb.WriteString(`\s+`)
			continue
		}

		if class, ok := characterClasses[r]; ok {
			sb.WriteString(class)
		} else {
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}

		// Filler is permitted between letters, but not after the last
		// letter and not adjacent to a literal space.
		if i < len(runes)-1 && !unicode.IsSpace(runes[i+1]) {
			sb.WriteString(fillerClass)
		}
	}

	sb.WriteString(trailingFillerClass)
	sb.WriteString(`\b`)

	return regexp.Compile(sb.String())
}
