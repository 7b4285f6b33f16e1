// Package export renders chat history result sets as line-oriented text or
// a structured JSON document. Writing the rendered bytes to disk is delegated
// to an injected FileWriter.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/halsted/roomlog/internal/database"
)

const (
	timeLayout     = "15:04:05"
	bannerLayout   = "Monday, 02 January 2006"
	fileNameLayout = "2006-01-02_15-04-05"
)

// FileWriter persists a rendered export. Implementations decide where the
// file lands and return the final path.
type FileWriter interface {
	WriteFile(name string, data []byte) (string, error)
}

// DirWriter writes exports into a fixed directory, creating it on demand.
type DirWriter struct {
	Dir string
}

func (w DirWriter) WriteFile(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// Exporter renders and writes history exports.
type Exporter struct {
	writer FileWriter
	logger *slog.Logger
	now    func() time.Time
}

// New returns an Exporter writing through writer.
func New(writer FileWriter, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Exporter{
		writer: writer,
		logger: logger.With("component", "export"),
		now:    time.Now,
	}
}

// ExportText writes the text rendering of entries and returns the file path.
func (e *Exporter) ExportText(entries []database.Entry) (string, error) {
	name := fmt.Sprintf("chat_history_%s.txt", e.now().Format(fileNameLayout))
	path, err := e.writer.WriteFile(name, []byte(Text(entries)))
	if err != nil {
		return "", err
	}
	e.logger.Info("history exported", "format", "text", "entries", len(entries), "path", path)
	return path, nil
}

// ExportJSON writes the structured rendering of entries and returns the
// file path.
func (e *Exporter) ExportJSON(entries []database.Entry) (string, error) {
	data, err := JSON(entries)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("chat_history_%s.json", e.now().Format(fileNameLayout))
	path, err := e.writer.WriteFile(name, data)
	if err != nil {
		return "", err
	}
	e.logger.Info("history exported", "format", "json", "entries", len(entries), "path", path)
	return path, nil
}

// Text renders entries chronologically, one line per entry, with a banner
// line separating each day when the export spans multiple dates. Input order
// does not matter; the entries are copied and sorted by timestamp first.
func Text(entries []database.Entry) string {
	sorted := make([]database.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	var b []byte
	var currentDate string
	for _, entry := range sorted {
		ts := entry.Time()
		date := ts.Format("2006-01-02")
		if date != currentDate {
			if currentDate != "" {
				b = append(b, '\n')
			}
			b = append(b, fmt.Sprintf("=== %s ===\n\n", ts.Format(bannerLayout))...)
			currentDate = date
		}
		b = append(b, line(entry, ts)...)
		b = append(b, '\n')
	}
	return string(b)
}

func line(entry database.Entry, ts time.Time) string {
	switch entry.Kind {
	case database.KindMessage:
		return fmt.Sprintf("[%s] %s: %s", ts.Format(timeLayout), entry.Name, entry.Message)
	case database.KindAction:
		return fmt.Sprintf("[%s] %s %s", ts.Format(timeLayout), entry.UserName, entry.Action)
	case database.KindRoom:
		return fmt.Sprintf("[%s] Entered room: %s by %s", ts.Format(timeLayout), entry.RoomName, entry.RoomOwner)
	default:
		return fmt.Sprintf("[%s] %s", ts.Format(timeLayout), entry.Kind)
	}
}

// jsonEntry is the structured export shape for one entry. Timestamps are
// RFC 3339 in the local zone, which preserves the store's one-second
// resolution exactly.
type jsonEntry struct {
	Kind             string    `json:"kind"`
	Timestamp        time.Time `json:"timestamp"`
	Name             string    `json:"name,omitempty"`
	Message          string    `json:"message,omitempty"`
	ChatType         string    `json:"chat_type,omitempty"`
	IsWhisper        bool      `json:"is_whisper,omitempty"`
	WhisperRecipient string    `json:"whisper_recipient,omitempty"`
	HasProfanity     bool      `json:"has_profanity,omitempty"`
	MatchedWords     []string  `json:"matched_words,omitempty"`
	UserName         string    `json:"user_name,omitempty"`
	Action           string    `json:"action,omitempty"`
	RoomName         string    `json:"room_name,omitempty"`
	RoomOwner        string    `json:"room_owner,omitempty"`
}

// JSON renders entries as an indented JSON array, one object per entry.
func JSON(entries []database.Entry) ([]byte, error) {
	out := make([]jsonEntry, len(entries))
	for i, entry := range entries {
		out[i] = jsonEntry{
			Kind:             entry.Kind,
			Timestamp:        entry.Time(),
			Name:             entry.Name,
			Message:          entry.Message,
			ChatType:         entry.ChatType,
			IsWhisper:        entry.IsWhisper,
			WhisperRecipient: entry.WhisperRecipient,
			HasProfanity:     entry.HasProfanity,
			MatchedWords:     entry.MatchedWords,
			UserName:         entry.UserName,
			Action:           entry.Action,
			RoomName:         entry.RoomName,
			RoomOwner:        entry.RoomOwner,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}

// ParseJSON decodes a structured export back into entries. Round-tripping
// through JSON and ParseJSON reproduces every field of every entry; only the
// database row id is not part of the export.
func ParseJSON(data []byte) ([]database.Entry, error) {
	var in []jsonEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	entries := make([]database.Entry, len(in))
	for i, e := range in {
		entries[i] = database.Entry{
			Kind:             e.Kind,
			Timestamp:        e.Timestamp.Unix(),
			Name:             e.Name,
			Message:          e.Message,
			ChatType:         e.ChatType,
			IsWhisper:        e.IsWhisper,
			WhisperRecipient: e.WhisperRecipient,
			HasProfanity:     e.HasProfanity,
			MatchedWords:     database.WordList(e.MatchedWords),
			UserName:         e.UserName,
			Action:           e.Action,
			RoomName:         e.RoomName,
			RoomOwner:        e.RoomOwner,
		}
	}
	return entries, nil
}
