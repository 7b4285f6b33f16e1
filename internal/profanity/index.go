package profanity

import (
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDebounce is the quiet period used to coalesce a burst of word-list
// edits into a single patterns-changed notification.
const DefaultDebounce = 150 * time.Millisecond

// Match is a single detection within an input string. Word is the base word
// from the list, not the obfuscated text that triggered it.
type Match struct {
	Start  int
	Length int
	Word   string
}

// WordStore persists the user's custom words. Default words are a fixed
// in-process constant and never go through a WordStore.
type WordStore interface {
	Load() ([]string, error)
	Save(words []string) error
}

// patternSet is an immutable snapshot of compiled matchers. A rebuild
// constructs a fresh set and publishes it with one atomic pointer swap, so
// readers never observe a partially rebuilt set.
type patternSet struct {
	words    []string
	patterns map[string]*regexp.Regexp
}

// Index owns the active word list (defaults plus user customizations) and
// the matcher set compiled from it. Reads are lock-free; mutations serialize
// behind a mutex and republish the whole set.
type Index struct {
	logger  *slog.Logger
	store   WordStore
	enabled atomic.Bool
	active  atomic.Pointer[patternSet]

	mu         sync.Mutex
	custom     []string
	customSet  map[string]struct{}
	defaultSet map[string]struct{}
	subs       []func()
	timer      *time.Timer
	debounce   time.Duration
	closed     bool
}

// Option configures an Index.
type Option func(*Index)

// WithDebounce overrides the notification quiet period.
func WithDebounce(d time.Duration) Option {
	return func(ix *Index) {
		if d > 0 {
			ix.debounce = d
		}
	}
}

// WithStore attaches a persistence backend for custom words. The store is
// read once at construction and written on every custom-word mutation.
func WithStore(store WordStore) Option {
	return func(ix *Index) { ix.store = store }
}

// NewIndex builds an index over the default word list plus any custom words
// loaded from the configured store. A load failure is treated as an empty
// custom list and logged, never returned.
func NewIndex(logger *slog.Logger, opts ...Option) *Index {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ix := &Index{
		logger:     logger.With("component", "profanity_index"),
		debounce:   DefaultDebounce,
		customSet:  make(map[string]struct{}),
		defaultSet: make(map[string]struct{}, len(DefaultWords)),
	}
	for _, w := range DefaultWords {
		ix.defaultSet[strings.ToLower(w)] = struct{}{}
	}
	for _, opt := range opts {
		opt(ix)
	}

	if ix.store != nil {
		words, err := ix.store.Load()
		if err != nil {
			ix.logger.Warn("failed to load custom words, starting empty", "error", err)
		}
		for _, w := range words {
			w = normalizeWord(w)
			if w == "" {
				continue
			}
			if _, isDefault := ix.defaultSet[w]; isDefault {
				continue
			}
			if _, dup := ix.customSet[w]; dup {
				continue
			}
			ix.customSet[w] = struct{}{}
			ix.custom = append(ix.custom, w)
		}
	}

	ix.enabled.Store(true)
	ix.active.Store(ix.build())
	ix.logger.Info("profanity index ready",
		"default_words", len(DefaultWords),
		"custom_words", len(ix.custom))
	return ix
}

// build compiles the full pattern set (defaults then custom, in stable
// order). Callers must hold ix.mu or be the constructor.
func (ix *Index) build() *patternSet {
	set := &patternSet{
		words:    make([]string, 0, len(DefaultWords)+len(ix.custom)),
		patterns: make(map[string]*regexp.Regexp, len(DefaultWords)+len(ix.custom)),
	}
	add := func(word string) {
		word = normalizeWord(word)
		if word == "" {
			return
		}
		if _, dup := set.patterns[word]; dup {
			return
		}
		re, err := Compile(word)
		if err != nil {
			ix.logger.Warn("skipping uncompilable word", "word", word, "error", err)
			return
		}
		set.words = append(set.words, word)
		set.patterns[word] = re
	}
	for _, w := range DefaultWords {
		add(w)
	}
	for _, w := range ix.custom {
		add(w)
	}
	return set
}

// SetEnabled toggles detection. When disabled, ContainsProfanity reports
// false and FindMatches returns nothing.
func (ix *Index) SetEnabled(enabled bool) {
	ix.enabled.Store(enabled)
}

// Enabled reports whether detection is active.
func (ix *Index) Enabled() bool {
	return ix.enabled.Load()
}

// ContainsProfanity reports whether text contains any listed word or an
// obfuscated spelling of one. It short-circuits on the first satisfied
// matcher and is safe to call concurrently with rebuilds.
func (ix *Index) ContainsProfanity(text string) bool {
	if !ix.enabled.Load() || text == "" {
		return false
	}
	set := ix.active.Load()
	for _, word := range set.words {
		if set.patterns[word].MatchString(text) {
			return true
		}
	}
	return false
}

// FindMatches runs every matcher against text, orders matches by start
// offset, and removes overlaps greedily left to right: a match whose start
// lies before the end of the previously kept match is discarded. The
// lowest-start match always wins, with no preference for longer matches.
func (ix *Index) FindMatches(text string) []Match {
	if !ix.enabled.Load() || text == "" {
		return nil
	}

	set := ix.active.Load()
	var matches []Match
	for _, word := range set.words {
		for _, loc := range set.patterns[word].FindAllStringIndex(text, -1) {
			matches = append(matches, Match{
				Start:  loc[0],
				Length: loc[1] - loc[0],
				Word:   word,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})

	kept := matches[:0]
	end := -1
	for _, m := range matches {
		if m.Start < end {
			continue
		}
		kept = append(kept, m)
		end = m.Start + m.Length
	}
	return kept
}

// AddWord adds a user word to the custom set. Blank words and words already
// present in the defaults or customs are no-ops. A successful add persists
// the custom list, rebuilds the pattern set, and schedules a debounced
// patterns-changed notification.
func (ix *Index) AddWord(word string) {
	word = normalizeWord(word)
	if word == "" {
		return
	}

	ix.mu.Lock()
	if _, isDefault := ix.defaultSet[word]; isDefault {
		ix.mu.Unlock()
		return
	}
	if _, dup := ix.customSet[word]; dup {
		ix.mu.Unlock()
		return
	}
	ix.customSet[word] = struct{}{}
	ix.custom = append(ix.custom, word)
	ix.persistLocked()
	ix.active.Store(ix.build())
	ix.scheduleNotifyLocked()
	ix.mu.Unlock()

	ix.logger.Debug("custom word added", "word", word)
}

// RemoveWord removes a word from the custom set. Default words are refused;
// unknown words are no-ops.
func (ix *Index) RemoveWord(word string) {
	word = normalizeWord(word)
	if word == "" {
		return
	}

	ix.mu.Lock()
	if _, ok := ix.customSet[word]; !ok {
		ix.mu.Unlock()
		return
	}
	delete(ix.customSet, word)
	for i, w := range ix.custom {
		if w == word {
			ix.custom = append(ix.custom[:i], ix.custom[i+1:]...)
			break
		}
	}
	ix.persistLocked()
	ix.active.Store(ix.build())
	ix.scheduleNotifyLocked()
	ix.mu.Unlock()

	ix.logger.Debug("custom word removed", "word", word)
}

// CustomWords returns a copy of the user's custom words in insertion order.
func (ix *Index) CustomWords() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make([]string, len(ix.custom))
	copy(out, ix.custom)
	return out
}

// AllWords returns the active word list, defaults first then customs.
func (ix *Index) AllWords() []string {
	set := ix.active.Load()
	out := make([]string, len(set.words))
	copy(out, set.words)
	return out
}

// Subscribe registers a callback fired after the pattern set changes. A burst
// of edits within the debounce window yields a single callback.
func (ix *Index) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	ix.mu.Lock()
	ix.subs = append(ix.subs, fn)
	ix.mu.Unlock()
}

// Close cancels any pending notification. The index remains usable for
// queries afterwards; further edits no longer notify.
func (ix *Index) Close() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.closed = true
	if ix.timer != nil {
		ix.timer.Stop()
		ix.timer = nil
	}
}

func (ix *Index) persistLocked() {
	if ix.store == nil {
		return
	}
	words := make([]string, len(ix.custom))
	copy(words, ix.custom)
	if err := ix.store.Save(words); err != nil {
		ix.logger.Error("failed to persist custom words", "error", err)
	}
}

func (ix *Index) scheduleNotifyLocked() {
	if ix.closed {
		return
	}
	if ix.timer != nil {
		ix.timer.Stop()
	}
	ix.timer = time.AfterFunc(ix.debounce, ix.notify)
}

func (ix *Index) notify() {
	ix.mu.Lock()
	if ix.closed {
		ix.mu.Unlock()
		return
	}
	subs := make([]func(), len(ix.subs))
	copy(subs, ix.subs)
	ix.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
