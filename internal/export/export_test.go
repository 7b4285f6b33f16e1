package export

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halsted/roomlog/internal/database"
)

func at(t time.Time) int64 { return t.Unix() }

func TestTextSingleDay(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 6, 1, 14, 30, 5, 0, time.Local)
	entries := []database.Entry{
		{Kind: database.KindMessage, Timestamp: at(day), Name: "alice", Message: "hello"},
		{Kind: database.KindAction, Timestamp: at(day.Add(time.Minute)), UserName: "bob", Action: "entered the room"},
		{Kind: database.KindRoom, Timestamp: at(day.Add(2 * time.Minute)), RoomName: "Lobby", RoomOwner: "carol"},
	}

	got := Text(entries)

	assert.Equal(t, 1, strings.Count(got, "=== Sunday, 01 June 2025 ==="), "one banner expected")
	assert.Contains(t, got, "=== Sunday, 01 June 2025 ===")
	assert.Contains(t, got, "[14:30:05] alice: hello")
	assert.Contains(t, got, "[14:31:05] bob entered the room")
	assert.Contains(t, got, "[14:32:05] Entered room: Lobby by carol")
}

func TestTextMultiDayBannersAndOrder(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2025, 6, 1, 23, 59, 0, 0, time.Local)
	day2 := time.Date(2025, 6, 2, 0, 1, 0, 0, time.Local)

	// Passed newest first; the rendering is chronological regardless.
	entries := []database.Entry{
		{Kind: database.KindMessage, Timestamp: at(day2), Name: "bob", Message: "second day"},
		{Kind: database.KindMessage, Timestamp: at(day1), Name: "alice", Message: "first day"},
	}

	got := Text(entries)

	firstBanner := strings.Index(got, "=== Sunday, 01 June 2025 ===")
	secondBanner := strings.Index(got, "=== Monday, 02 June 2025 ===")
	require.GreaterOrEqual(t, firstBanner, 0)
	require.Greater(t, secondBanner, firstBanner)
	assert.Less(t, strings.Index(got, "first day"), strings.Index(got, "second day"))
}

func TestTextEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Text(nil))
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 1, 14, 30, 5, 0, time.Local)
	entries := []database.Entry{
		{
			Kind:             database.KindMessage,
			Timestamp:        at(ts),
			Name:             "alice",
			Message:          "total merde",
			ChatType:         "whisper",
			IsWhisper:        true,
			WhisperRecipient: "bob",
			HasProfanity:     true,
			MatchedWords:     database.WordList{"merde"},
		},
		{Kind: database.KindAction, Timestamp: at(ts.Add(time.Second)), UserName: "bob", Action: "kicked"},
		{Kind: database.KindRoom, Timestamp: at(ts.Add(2 * time.Second)), RoomName: "Lobby", RoomOwner: "carol"},
	}

	data, err := JSON(entries)
	require.NoError(t, err)

	got, err := ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, got, len(entries))
	for i := range entries {
		want := entries[i]
		want.ID = 0
		assert.Equal(t, want, got[i], "entry %d", i)
	}
}

func TestExporterWritesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e := New(DirWriter{Dir: dir}, nil)
	e.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local) }

	entries := []database.Entry{
		{Kind: database.KindMessage, Timestamp: at(time.Now()), Name: "alice", Message: "hello"},
	}

	textPath, err := e.ExportText(entries)
	require.NoError(t, err)
	assert.Equal(t, "chat_history_2025-06-01_12-00-00.txt", strings.TrimPrefix(textPath, dir+string(os.PathSeparator)))
	content, err := os.ReadFile(textPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "alice: hello")

	jsonPath, err := e.ExportJSON(entries)
	require.NoError(t, err)
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	got, err := ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Message)
}
