package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// dedupWindow is the tolerance applied when deciding whether an incoming
// message is a re-delivery of one already stored.
const dedupWindow = 2 * time.Second

// Checker decides whether a message text contains a listed word. Implemented
// by the profanity index.
type Checker interface {
	ContainsProfanity(text string) bool
}

// Filters narrows a Search. Zero values mean "no constraint"; all set
// constraints must hold for a row to match.
type Filters struct {
	// UserName matches entries whose speaker or subject user contains the
	// value, case-insensitively.
	UserName string
	// Keyword matches entries whose message text or action label contains
	// the value, case-insensitively.
	Keyword string
	// ProfanityOnly keeps only entries flagged at insertion or re-tag time.
	ProfanityOnly bool
	// WhispersOnly keeps only whispered messages.
	WhispersOnly bool
	// From and To bound the entry timestamp, inclusive on both ends.
	From time.Time
	To   time.Time
}

// Store defines the chat history data access interface.
type Store interface {
	// AddEntry persists an entry unless an equivalent message already
	// exists. It reports whether the entry was inserted.
	AddEntry(ctx context.Context, entry *Entry) (bool, error)

	// Search returns entries matching all set filters, newest first,
	// limited to limit rows (0 means unlimited). The second result is the
	// total number of matching rows before the limit was applied.
	Search(ctx context.Context, filters Filters, limit int) ([]Entry, int, error)

	// UpdateProfanityFlags re-checks every stored message against checker
	// and persists flags that changed, all in one transaction. It returns
	// the number of entries whose flag changed.
	UpdateProfanityFlags(ctx context.Context, checker Checker) (int, error)

	// AllEntries returns the full history in chronological order.
	AllEntries(ctx context.Context) ([]Entry, error)

	// EntryCount returns the number of stored entries.
	EntryCount(ctx context.Context) (int, error)

	// Clear deletes all entries.
	Clear(ctx context.Context) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx. All operations serialize behind one
// mutex: call volume is bounded by human chat rate, not a hot path, and the
// dedup check plus insert must be atomic.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger

	mu    sync.Mutex
	count int
}

// NewStore creates a Store backed by db. The entry count is read once here
// and maintained incrementally afterwards.
func NewStore(db *sqlx.DB, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
	if err := s.db.Get(&s.count, "SELECT COUNT(*) FROM chat_history"); err != nil {
		return nil, fmt.Errorf("failed to count history entries: %w", err)
	}
	return s, nil
}

func (s *sqlxStore) AddEntry(ctx context.Context, entry *Entry) (bool, error) {
	if entry == nil {
		return false, errors.New("cannot save nil entry")
	}
	if entry.Kind == "" {
		return false, errors.New("entry must have a kind")
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Kind == KindMessage {
		dup, err := s.messageExists(ctx, entry)
		if err != nil {
			return false, err
		}
		if dup {
			s.logger.DebugContext(ctx, "duplicate message skipped",
				"name", entry.Name, "timestamp", entry.Timestamp)
			return false, nil
		}
	}

	query := `
        INSERT INTO chat_history (timestamp, kind, name, message, chat_type, is_whisper, whisper_recipient, has_profanity, matched_words, user_name, action, room_name, room_owner)
        VALUES (:timestamp, :kind, :name, :message, :chat_type, :is_whisper, :whisper_recipient, :has_profanity, :matched_words, :user_name, :action, :room_name, :room_owner)`

	result, err := s.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return false, fmt.Errorf("failed to save entry: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	} else {
		s.logger.WarnContext(ctx, "could not retrieve last insert id", "error", err)
	}
	s.count++
	return true, nil
}

// messageExists reports whether an equivalent message is already stored.
// Equivalence is same speaker and text within the dedup window around the
// entry timestamp, so re-delivered packets do not double-log.
func (s *sqlxStore) messageExists(ctx context.Context, entry *Entry) (bool, error) {
	window := int64(dedupWindow / time.Second)
	var n int
	err := s.db.GetContext(ctx, &n, `
        SELECT COUNT(*) FROM chat_history
        WHERE kind = ? AND name = ? AND message = ? AND timestamp BETWEEN ? AND ?`,
		KindMessage, entry.Name, entry.Message,
		entry.Timestamp-window, entry.Timestamp+window)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate message: %w", err)
	}
	return n > 0, nil
}

// searchRow carries the window-function total alongside each entry so a
// single query yields both the page and the unlimited match count.
type searchRow struct {
	Entry
	TotalCount int `db:"total_count"`
}

func (s *sqlxStore) Search(ctx context.Context, filters Filters, limit int) ([]Entry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	builder := sq.Select("*", "COUNT(*) OVER() AS total_count").
		From("chat_history").
		OrderBy("timestamp DESC, id DESC")

	if !filters.From.IsZero() {
		builder = builder.Where(sq.GtOrEq{"timestamp": filters.From.Unix()})
	}
	if !filters.To.IsZero() {
		builder = builder.Where(sq.LtOrEq{"timestamp": filters.To.Unix()})
	}
	if filters.UserName != "" {
		pattern := "%" + filters.UserName + "%"
		builder = builder.Where(sq.Or{
			sq.Like{"name": pattern},
			sq.Like{"user_name": pattern},
		})
	}
	if filters.Keyword != "" {
		pattern := "%" + filters.Keyword + "%"
		builder = builder.Where(sq.Or{
			sq.Like{"message": pattern},
			sq.Like{"action": pattern},
		})
	}
	if filters.ProfanityOnly {
		builder = builder.Where(sq.Eq{"has_profanity": 1})
	}
	if filters.WhispersOnly {
		builder = builder.Where(sq.Eq{"is_whisper": 1})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build search query: %w", err)
	}

	var rows []searchRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search history: %w", err)
	}

	entries := make([]Entry, len(rows))
	total := 0
	for i, row := range rows {
		entries[i] = row.Entry
		total = row.TotalCount
	}
	return entries, total, nil
}

func (s *sqlxStore) UpdateProfanityFlags(ctx context.Context, checker Checker) (int, error) {
	if checker == nil {
		return 0, errors.New("checker is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type row struct {
		ID           int64  `db:"id"`
		Message      string `db:"message"`
		HasProfanity bool   `db:"has_profanity"`
	}
	var messages []row
	err := s.db.SelectContext(ctx, &messages, `
        SELECT id, message, has_profanity FROM chat_history
        WHERE kind = ? AND message != ''`, KindMessage)
	if err != nil {
		return 0, fmt.Errorf("failed to load messages for re-tag: %w", err)
	}

	type update struct {
		id   int64
		flag bool
	}
	var updates []update
	for _, m := range messages {
		if flag := checker.ContainsProfanity(m.Message); flag != m.HasProfanity {
			updates = append(updates, update{id: m.ID, flag: flag})
		}
	}
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin re-tag transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "error rolling back re-tag transaction", "error", err)
		}
	}()

	stmt, err := tx.PreparexContext(ctx, "UPDATE chat_history SET has_profanity = ? WHERE id = ?")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare re-tag update: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.flag, u.id); err != nil {
			return 0, fmt.Errorf("failed to update entry %d: %w", u.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit re-tag transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "profanity flags re-tagged",
		"scanned", len(messages), "changed", len(updates))
	return len(updates), nil
}

func (s *sqlxStore) AllEntries(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []Entry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM chat_history ORDER BY timestamp ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}

func (s *sqlxStore) EntryCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, nil
}

func (s *sqlxStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM chat_history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	s.count = 0
	s.logger.InfoContext(ctx, "chat history cleared")
	return nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.InfoContext(ctx, "starting database maintenance")
	start := time.Now()
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint database: %w", err)
	}
	s.logger.InfoContext(ctx, "database maintenance finished",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
