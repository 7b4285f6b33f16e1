package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halsted/roomlog/internal/database"
	"github.com/halsted/roomlog/internal/export"
	"github.com/halsted/roomlog/internal/livelog"
	"github.com/halsted/roomlog/internal/profanity"
)

func newTestApp(t *testing.T) (*App, database.Store, *livelog.Cache, *profanity.Index) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	store, err := database.NewStore(db, nil)
	require.NoError(t, err)

	ix := profanity.NewIndex(nil, profanity.WithDebounce(20*time.Millisecond))
	t.Cleanup(ix.Close)

	cache := livelog.NewCache(nil)
	a := New(nil, ix, store, cache, nil)
	return a, store, cache, ix
}

func TestOnChatAnnotatesAndPersists(t *testing.T) {
	t.Parallel()

	a, store, cache, _ := newTestApp(t)
	ctx := context.Background()

	a.OnChat(ctx, ChatEvent{Name: "alice", Message: "quelle m3rde", ChatType: "talk"})
	a.OnChat(ctx, ChatEvent{Name: "bob", Message: "hello there", ChatType: "talk"})

	items := cache.Items()
	require.Len(t, items, 2)
	assert.True(t, items[0].HasProfanity)
	assert.Equal(t, []string{"m3rde"}, items[0].MatchedWords, "matched segment is the obfuscated text")
	assert.False(t, items[1].HasProfanity)

	entries, _, err := store.Search(ctx, database.Filters{ProfanityOnly: true}, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "quelle m3rde", entries[0].Message)
	assert.Equal(t, database.WordList{"m3rde"}, entries[0].MatchedWords)
}

func TestOnChatDuplicateStoredOnce(t *testing.T) {
	t.Parallel()

	a, store, cache, _ := newTestApp(t)
	ctx := context.Background()
	now := time.Now()

	a.OnChat(ctx, ChatEvent{Name: "alice", Message: "hello", Time: now})
	a.OnChat(ctx, ChatEvent{Name: "alice", Message: "hello", Time: now.Add(time.Second)})

	count, err := store.EntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-delivered message stored once")
	assert.Equal(t, 2, cache.Len(), "live log shows both arrivals")
}

func TestOnActionAndOnRoomEnter(t *testing.T) {
	t.Parallel()

	a, store, cache, _ := newTestApp(t)
	ctx := context.Background()

	a.OnAction(ctx, ActionEvent{UserName: "bob", Action: "entered the room"})
	a.OnRoomEnter(ctx, RoomEvent{RoomID: 9, Name: "Lobby", Owner: "carol"})

	items := cache.Items()
	require.Len(t, items, 2)
	assert.Equal(t, database.KindAction, items[0].Kind)
	assert.Equal(t, database.KindRoom, items[1].Kind)

	entries, err := store.AllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Lobby", entries[1].RoomName)
	assert.Equal(t, "carol", entries[1].RoomOwner)
}

func TestOnChatNormalizesMessage(t *testing.T) {
	t.Parallel()

	a, store, _, _ := newTestApp(t)
	ctx := context.Background()

	a.OnChat(ctx, ChatEvent{Name: "alice", Message: "  hello \t world\x00 "})

	entries, err := store.AllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello world", entries[0].Message)
}

func TestExportHistory(t *testing.T) {
	t.Parallel()

	a, _, _, _ := newTestApp(t)
	ctx := context.Background()

	a.OnChat(ctx, ChatEvent{Name: "alice", Message: "hello"})
	a.OnAction(ctx, ActionEvent{UserName: "bob", Action: "waved"})

	dir := t.TempDir()
	require.NoError(t, a.ExportHistory(ctx, export.New(export.DirWriter{Dir: dir}, nil)))

	names, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, names, 2)
}

func TestWordListChangeRetagsHistoryAndLiveLog(t *testing.T) {
	t.Parallel()

	a, store, cache, ix := newTestApp(t)
	ctx := context.Background()

	a.OnChat(ctx, ChatEvent{Name: "alice", Message: "flibber is fine today"})

	items := cache.Items()
	require.Len(t, items, 1)
	require.False(t, items[0].HasProfanity)

	ix.AddWord("flibber")

	assert.Eventually(t, func() bool {
		entries, _, err := store.Search(ctx, database.Filters{ProfanityOnly: true}, 0)
		if err != nil || len(entries) != 1 {
			return false
		}
		items := cache.Items()
		return len(items) == 1 && items[0].HasProfanity
	}, 3*time.Second, 20*time.Millisecond, "history and live log converge after word add")
}
