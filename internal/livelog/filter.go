package livelog

import (
	"strings"

	"github.com/halsted/roomlog/internal/database"
)

// Filter narrows a live view. Zero value matches everything.
type Filter struct {
	// Text is a keyword query. Quoted phrases are single tokens, unquoted
	// runs of non-space characters are each a token; an item matches if ANY
	// token appears in one of its searchable fields.
	Text string
	// WhispersOnly keeps only whispered messages.
	WhispersOnly bool
	// ProfanityOnly keeps only flagged messages.
	ProfanityOnly bool
}

func (f Filter) predicate() func(Item) bool {
	keywords := ParseKeywords(f.Text)
	return func(item Item) bool {
		if f.WhispersOnly && (item.Kind != database.KindMessage || !item.IsWhisper) {
			return false
		}
		if f.ProfanityOnly && (item.Kind != database.KindMessage || !item.HasProfanity) {
			return false
		}
		if len(keywords) > 0 {
			return matchesKeywords(item, keywords)
		}
		return true
	}
}

// matchesKeywords checks the kind-specific searchable fields: speaker and
// text for messages, subject and label for actions, room name for room
// entries.
func matchesKeywords(item Item, keywords []string) bool {
	switch item.Kind {
	case database.KindMessage:
		return anyContains(keywords, item.Name, item.Message)
	case database.KindAction:
		return anyContains(keywords, item.UserName, item.Action)
	case database.KindRoom:
		return anyContains(keywords, item.RoomName)
	default:
		return false
	}
}

func anyContains(keywords []string, fields ...string) bool {
	for _, keyword := range keywords {
		kw := strings.ToLower(keyword)
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), kw) {
				return true
			}
		}
	}
	return false
}

// ParseKeywords splits a filter string into search tokens. Text inside
// double quotes is one token, spaces are retained inside quotes, and an
// unterminated quote runs to the end of the string. Blank input yields nil.
func ParseKeywords(filterText string) []string {
	if strings.TrimSpace(filterText) == "" {
		return nil
	}

	var keywords []string
	var current strings.Builder
	inQuotes := false

	for _, c := range filterText {
		switch {
		case c == '"':
			if inQuotes && current.Len() > 0 {
				keywords = append(keywords, current.String())
				current.Reset()
			}
			inQuotes = !inQuotes
		case c == ' ' && !inQuotes:
			if current.Len() > 0 {
				keywords = append(keywords, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(c)
		}
	}
	if current.Len() > 0 {
		keywords = append(keywords, current.String())
	}
	return keywords
}
