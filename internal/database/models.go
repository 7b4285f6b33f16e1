package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Entry kinds. Exactly the fields relevant to a kind are populated; the
// remaining columns stay at their zero values.
const (
	KindMessage = "message"
	KindAction  = "action"
	KindRoom    = "room"
)

// WordList stores a list of matched words as a JSON array in a single TEXT
// column. An empty list is stored as the empty string.
type WordList []string

// Value implements driver.Valuer.
func (w WordList) Value() (driver.Value, error) {
	if len(w) == 0 {
		return "", nil
	}
	data, err := json.Marshal([]string(w))
	if err != nil {
		return nil, fmt.Errorf("failed to encode word list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner. NULL and the empty string both decode to an
// empty list.
func (w *WordList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into WordList", src)
	}
	if len(data) == 0 {
		*w = nil
		return nil
	}
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return fmt.Errorf("failed to decode word list: %w", err)
	}
	*w = words
	return nil
}

// Entry is one persisted chat history event. Timestamp is stored as unix
// seconds and is the authoritative ordering key.
type Entry struct {
	ID        int64  `db:"id"`
	Timestamp int64  `db:"timestamp"`
	Kind      string `db:"kind"`

	// message kind
	Name             string   `db:"name"`
	Message          string   `db:"message"`
	ChatType         string   `db:"chat_type"`
	IsWhisper        bool     `db:"is_whisper"`
	WhisperRecipient string   `db:"whisper_recipient"`
	HasProfanity     bool     `db:"has_profanity"`
	MatchedWords     WordList `db:"matched_words"`

	// action kind
	UserName string `db:"user_name"`
	Action   string `db:"action"`

	// room kind
	RoomName  string `db:"room_name"`
	RoomOwner string `db:"room_owner"`
}

// Time returns the entry timestamp in the local time zone.
func (e *Entry) Time() time.Time {
	return time.Unix(e.Timestamp, 0)
}
