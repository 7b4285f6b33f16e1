package livelog

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/halsted/roomlog/internal/database"
	"github.com/halsted/roomlog/internal/profanity"
)

func message(name, text string) Item {
	return Item{
		Kind:    database.KindMessage,
		Name:    name,
		Message: text,
	}
}

func TestCacheAddAssignsIncreasingIDs(t *testing.T) {
	t.Parallel()

	c := NewCache(nil)

	var last int64
	for i := 0; i < 10; i++ {
		id := c.Add(message("alice", "hello"))
		if id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
	if got := c.Len(); got != 10 {
		t.Errorf("Len() = %d, want 10", got)
	}
}

func TestCacheClearDoesNotResetIDs(t *testing.T) {
	t.Parallel()

	c := NewCache(nil)
	before := c.Add(message("alice", "one"))
	c.Clear()

	if got := c.Len(); got != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", got)
	}
	if after := c.Add(message("alice", "two")); after <= before {
		t.Errorf("id after Clear = %d, want > %d", after, before)
	}
}

func TestCacheViewAscending(t *testing.T) {
	t.Parallel()

	c := NewCache(nil)
	c.Add(message("alice", "first"))
	c.Add(message("bob", "second"))
	c.Add(message("carol", "third"))

	items := c.Items()
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].EntryID >= items[i].EntryID {
			t.Errorf("items not ascending: %d before %d", items[i-1].EntryID, items[i].EntryID)
		}
	}
	if items[0].Message != "first" || items[2].Message != "third" {
		t.Errorf("unexpected order: %q .. %q", items[0].Message, items[2].Message)
	}
}

func TestCacheViewFilters(t *testing.T) {
	t.Parallel()

	c := NewCache(nil)
	whisper := message("alice", "psst secret")
	whisper.IsWhisper = true
	flagged := message("bob", "bad stuff")
	flagged.HasProfanity = true
	c.Add(whisper)
	c.Add(flagged)
	c.Add(message("carol", "ordinary talk"))
	c.Add(Item{Kind: database.KindAction, UserName: "dave", Action: "entered the room"})
	c.Add(Item{Kind: database.KindRoom, RoomName: "Secret Lounge", RoomOwner: "eve"})

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: []string{"alice", "bob", "carol", "dave", "eve"}},
		{name: "whispers only", filter: Filter{WhispersOnly: true}, want: []string{"alice"}},
		{name: "profanity only", filter: Filter{ProfanityOnly: true}, want: []string{"bob"}},
		{name: "keyword in message", filter: Filter{Text: "ordinary"}, want: []string{"carol"}},
		{name: "keyword in speaker name", filter: Filter{Text: "ali"}, want: []string{"alice"}},
		{name: "keyword in action", filter: Filter{Text: "entered"}, want: []string{"dave"}},
		{name: "keyword in room name", filter: Filter{Text: "lounge"}, want: []string{"eve"}},
		{name: "any token matches", filter: Filter{Text: "ordinary entered"}, want: []string{"carol", "dave"}},
		{name: "quoted phrase", filter: Filter{Text: `"secret lounge"`}, want: []string{"eve"}},
		{name: "conjunctive flags and text", filter: Filter{Text: "psst", WhispersOnly: true}, want: []string{"alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items := c.View(tt.filter)
			var got []string
			for _, item := range items {
				switch item.Kind {
				case database.KindAction:
					got = append(got, item.UserName)
				case database.KindRoom:
					got = append(got, item.RoomOwner)
				default:
					got = append(got, item.Name)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestParseKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "blank", input: "   ", want: nil},
		{name: "single word", input: "hello", want: []string{"hello"}},
		{name: "multiple words", input: "hello world", want: []string{"hello", "world"}},
		{name: "quoted phrase", input: `"hello world"`, want: []string{"hello world"}},
		{name: "mixed", input: `foo "bar baz" qux`, want: []string{"foo", "bar baz", "qux"}},
		{name: "unterminated quote", input: `foo "bar baz`, want: []string{"foo", "bar baz"}},
		{name: "extra spaces", input: "  foo   bar  ", want: []string{"foo", "bar"}},
		{name: "empty quotes", input: `foo "" bar`, want: []string{"foo", "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseKeywords(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseKeywords(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ParseKeywords(%q) = %v, want %v", tt.input, got, tt.want)
					break
				}
			}
		})
	}
}

func TestCacheEviction(t *testing.T) {
	t.Parallel()

	t.Run("older than cutoff", func(t *testing.T) {
		t.Parallel()

		c := NewCache(nil)
		old := message("alice", "old")
		old.Timestamp = time.Now().Add(-2 * time.Hour)
		c.Add(old)
		c.Add(message("bob", "new"))

		removed := c.EvictOlderThan(time.Now().Add(-time.Hour))
		if removed != 1 {
			t.Fatalf("removed = %d, want 1", removed)
		}
		items := c.Items()
		if len(items) != 1 || items[0].Message != "new" {
			t.Errorf("remaining items = %+v", items)
		}
	})

	t.Run("count window", func(t *testing.T) {
		t.Parallel()

		c := NewCache(nil)
		for i := 0; i < 10; i++ {
			c.Add(message("alice", "msg"))
		}
		removed := c.EvictToWindow(3)
		if removed != 7 {
			t.Fatalf("removed = %d, want 7", removed)
		}
		if got := c.Len(); got != 3 {
			t.Errorf("Len() = %d, want 3", got)
		}
	})

	t.Run("remove by predicate", func(t *testing.T) {
		t.Parallel()

		c := NewCache(nil)
		c.Add(message("alice", "keep"))
		c.Add(message("bob", "drop"))
		removed := c.RemoveWhere(func(item Item) bool { return item.Name == "bob" })
		if removed != 1 || c.Len() != 1 {
			t.Errorf("removed = %d, Len = %d", removed, c.Len())
		}
	})
}

func TestCacheOnAppend(t *testing.T) {
	t.Parallel()

	c := NewCache(nil)
	var mu sync.Mutex
	var seen []string
	c.OnAppend(func(item Item) {
		mu.Lock()
		seen = append(seen, item.Message)
		mu.Unlock()
	})

	c.Add(message("alice", "one"))
	c.Add(message("bob", "two"))

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "one" || seen[1] != "two" {
		t.Errorf("append notifications = %v", seen)
	}
}

func TestCacheReannotate(t *testing.T) {
	t.Parallel()

	ix := profanity.NewIndex(nil)
	defer ix.Close()

	c := NewCache(nil)
	stale := message("alice", "flibber here")
	stale.HasProfanity = false
	c.Add(stale)
	wrong := message("bob", "totally clean")
	wrong.HasProfanity = true
	wrong.MatchedWords = []string{"clean"}
	c.Add(wrong)
	c.Add(Item{Kind: database.KindAction, UserName: "carol", Action: "flibber"})

	ix.AddWord("flibber")
	changed := c.Reannotate(ix)
	if changed != 2 {
		t.Fatalf("changed = %d, want 2", changed)
	}

	items := c.Items()
	if !items[0].HasProfanity {
		t.Error("message containing new word not flagged")
	}
	if len(items[0].MatchedWords) != 1 || !strings.EqualFold(items[0].MatchedWords[0], "flibber") {
		t.Errorf("matched words = %v", items[0].MatchedWords)
	}
	if items[1].HasProfanity || items[1].MatchedWords != nil {
		t.Error("stale flag on clean message not cleared")
	}
	if items[2].HasProfanity {
		t.Error("non-message item must not be annotated")
	}
}

func TestCacheConcurrentAddAndView(t *testing.T) {
	t.Parallel()

	c := NewCache(nil)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			items := c.View(Filter{Text: "msg"})
			for i := 1; i < len(items); i++ {
				if items[i-1].EntryID >= items[i].EntryID {
					t.Error("view not ascending during concurrent adds")
					return
				}
			}
		}
	}()

	for i := 0; i < 200; i++ {
		c.Add(message("alice", "msg"))
	}
	close(stop)
	wg.Wait()
}
