// Package livelog holds the bounded in-memory view of recently seen chat
// entries that feeds the UI. It is not durable; the database package owns
// persistence.
package livelog

import (
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/halsted/roomlog/internal/database"
	"github.com/halsted/roomlog/internal/profanity"
)

// Item is the UI-facing projection of one event. EntryID is a
// process-lifetime sequence number, strictly increasing and never reused,
// and is the identity and sort key for the live view.
type Item struct {
	EntryID   int64
	Timestamp time.Time
	Kind      string

	Name             string
	Message          string
	ChatType         string
	IsWhisper        bool
	WhisperRecipient string
	HasProfanity     bool
	MatchedWords     []string

	UserName string
	Action   string

	RoomName  string
	RoomOwner string
}

// Matcher finds listed words in a message text. Implemented by the
// profanity index.
type Matcher interface {
	FindMatches(text string) []profanity.Match
}

// Cache is the live log itself. Appends come from the event producer,
// reads from the UI, and re-annotation from a background task; all of it
// may run concurrently.
type Cache struct {
	logger *slog.Logger
	nextID atomic.Int64

	mu    sync.RWMutex
	items []*Item
	byID  map[int64]*Item

	subMu sync.Mutex
	subs  []func(Item)
}

// NewCache returns an empty live log.
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		logger: logger.With("component", "livelog"),
		byID:   make(map[int64]*Item),
	}
}

// Add assigns the next EntryID to item, appends it, and notifies append
// subscribers. It returns the assigned id.
func (c *Cache) Add(item Item) int64 {
	item.EntryID = c.nextID.Add(1)
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}

	c.mu.Lock()
	stored := item
	c.items = append(c.items, &stored)
	c.byID[item.EntryID] = &stored
	c.mu.Unlock()

	c.subMu.Lock()
	subs := make([]func(Item), len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()
	for _, fn := range subs {
		fn(item)
	}
	return item.EntryID
}

// OnAppend registers a callback invoked after every Add with a copy of the
// appended item.
func (c *Cache) OnAppend(fn func(Item)) {
	if fn == nil {
		return
	}
	c.subMu.Lock()
	c.subs = append(c.subs, fn)
	c.subMu.Unlock()
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear drops every cached item. EntryIDs are not reset.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = nil
	c.byID = make(map[int64]*Item)
	c.mu.Unlock()
}

// RemoveWhere deletes all items matching pred and returns how many were
// removed.
func (c *Cache) RemoveWhere(pred func(Item) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	removed := 0
	for _, item := range c.items {
		if pred(*item) {
			delete(c.byID, item.EntryID)
			removed++
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept
	return removed
}

// EvictOlderThan removes items whose timestamp is before cutoff.
func (c *Cache) EvictOlderThan(cutoff time.Time) int {
	removed := c.RemoveWhere(func(item Item) bool {
		return item.Timestamp.Before(cutoff)
	})
	if removed > 0 {
		c.logger.Debug("evicted aged live log items", "removed", removed)
	}
	return removed
}

// EvictToWindow keeps only the window most recently assigned ids.
func (c *Cache) EvictToWindow(window int) int {
	if window <= 0 {
		return 0
	}
	minID := c.nextID.Load() - int64(window) + 1
	return c.RemoveWhere(func(item Item) bool {
		return item.EntryID < minID
	})
}

// View returns the items satisfying filter, ascending by EntryID. The
// result is a snapshot; later mutations do not affect it.
func (c *Cache) View(filter Filter) []Item {
	pred := filter.predicate()

	c.mu.RLock()
	out := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		if pred(*item) {
			out = append(out, *item)
		}
	}
	c.mu.RUnlock()

	// Items append in id order already; sort defensively in case a future
	// writer inserts out of order.
	sort.Slice(out, func(i, j int) bool { return out[i].EntryID < out[j].EntryID })
	return out
}

// Items returns a snapshot of every cached item, ascending by EntryID.
func (c *Cache) Items() []Item {
	return c.View(Filter{})
}

// Reannotate re-runs the matcher over every cached message and rewrites
// profanity flags and matched words. Matching happens on a snapshot so
// producers are never blocked behind the scan; results are applied by id
// afterwards, skipping items evicted in the meantime. It returns the number
// of items whose annotation changed.
func (c *Cache) Reannotate(matcher Matcher) int {
	type snapshot struct {
		id      int64
		message string
	}

	c.mu.RLock()
	messages := make([]snapshot, 0, len(c.items))
	for _, item := range c.items {
		if item.Kind == database.KindMessage {
			messages = append(messages, snapshot{id: item.EntryID, message: item.Message})
		}
	}
	c.mu.RUnlock()

	type result struct {
		id      int64
		flagged bool
		words   []string
	}
	results := make([]result, 0, len(messages))
	for _, m := range messages {
		matches := matcher.FindMatches(m.message)
		results = append(results, result{
			id:      m.id,
			flagged: len(matches) > 0,
			words:   MatchedSegments(m.message, matches),
		})
	}

	c.mu.Lock()
	changed := 0
	for _, r := range results {
		item, ok := c.byID[r.id]
		if !ok {
			continue
		}
		if item.HasProfanity != r.flagged || !equalWords(item.MatchedWords, r.words) {
			item.HasProfanity = r.flagged
			item.MatchedWords = r.words
			changed++
		}
	}
	c.mu.Unlock()

	if changed > 0 {
		c.logger.Debug("re-annotated live log", "scanned", len(messages), "changed", changed)
	}
	return changed
}

// MatchedSegments returns the distinct text segments covered by matches, in
// order of first appearance.
func MatchedSegments(text string, matches []profanity.Match) []string {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if m.Start < 0 || m.Start+m.Length > len(text) {
			continue
		}
		segment := text[m.Start : m.Start+m.Length]
		if _, dup := seen[strings.ToLower(segment)]; dup {
			continue
		}
		seen[strings.ToLower(segment)] = struct{}{}
		out = append(out, segment)
	}
	return out
}

func equalWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
