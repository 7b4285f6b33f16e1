// Package app wires the profanity index, live log, and history store into
// the event intake pipeline and owns the application run loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/halsted/roomlog/internal/database"
	"github.com/halsted/roomlog/internal/export"
	"github.com/halsted/roomlog/internal/livelog"
	"github.com/halsted/roomlog/internal/logger"
	"github.com/halsted/roomlog/internal/profanity"
	"github.com/halsted/roomlog/internal/scheduler"
	"github.com/halsted/roomlog/internal/text"
)

// retagTimeout bounds one background re-tag run over the full history.
const retagTimeout = 5 * time.Minute

// App routes incoming events through the detector into the live log and the
// history store, and reacts to word-list changes by re-tagging both.
type App struct {
	logger    *slog.Logger
	index     *profanity.Index
	store     database.Store
	cache     *livelog.Cache
	scheduler *scheduler.Scheduler

	// refreshMu serializes background re-tag runs; a burst of notifications
	// past the debounce still yields one run at a time.
	refreshMu sync.Mutex
}

// New wires the pipeline and subscribes to the detector's patterns-changed
// signal.
func New(log *slog.Logger, index *profanity.Index, store database.Store, cache *livelog.Cache, sched *scheduler.Scheduler) *App {
	if log == nil {
		log = slog.Default()
	}
	a := &App{
		logger:    log.With("component", "app"),
		index:     index,
		store:     store,
		cache:     cache,
		scheduler: sched,
	}
	index.Subscribe(func() { go a.refreshAnnotations() })
	return a
}

// OnChat annotates an incoming chat line and records it in the live log and
// the history store. Store failures are logged, never returned: losing one
// durable row must not break the live view.
func (a *App) OnChat(ctx context.Context, ev ChatEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	ev.Message = text.CleanLine(ev.Message)

	matches := a.index.FindMatches(ev.Message)
	segments := livelog.MatchedSegments(ev.Message, matches)
	flagged := len(matches) > 0

	a.cache.Add(livelog.Item{
		Timestamp:        ev.Time,
		Kind:             database.KindMessage,
		Name:             ev.Name,
		Message:          ev.Message,
		ChatType:         ev.ChatType,
		IsWhisper:        ev.Whisper,
		WhisperRecipient: ev.WhisperRecipient,
		HasProfanity:     flagged,
		MatchedWords:     segments,
	})

	entry := &database.Entry{
		Timestamp:        ev.Time.Unix(),
		Kind:             database.KindMessage,
		Name:             ev.Name,
		Message:          ev.Message,
		ChatType:         ev.ChatType,
		IsWhisper:        ev.Whisper,
		WhisperRecipient: ev.WhisperRecipient,
		HasProfanity:     flagged,
		MatchedWords:     database.WordList(segments),
	}
	inserted, err := a.store.AddEntry(ctx, entry)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to persist chat entry",
			"name", ev.Name, "text_preview", logger.Preview(ev.Message, 50), "error", err)
		return
	}
	if flagged && inserted {
		a.logger.InfoContext(ctx, "flagged message logged",
			"name", ev.Name, "matched_words", segments)
	}
}

// OnAction records a user action event.
func (a *App) OnAction(ctx context.Context, ev ActionEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	a.cache.Add(livelog.Item{
		Timestamp: ev.Time,
		Kind:      database.KindAction,
		UserName:  ev.UserName,
		Action:    ev.Action,
	})

	if _, err := a.store.AddEntry(ctx, &database.Entry{
		Timestamp: ev.Time.Unix(),
		Kind:      database.KindAction,
		UserName:  ev.UserName,
		Action:    ev.Action,
	}); err != nil {
		a.logger.ErrorContext(ctx, "failed to persist action entry",
			"user", ev.UserName, "action", ev.Action, "error", err)
	}
}

// OnRoomEnter records entry into a room.
func (a *App) OnRoomEnter(ctx context.Context, ev RoomEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	a.cache.Add(livelog.Item{
		Timestamp: ev.Time,
		Kind:      database.KindRoom,
		RoomName:  ev.Name,
		RoomOwner: ev.Owner,
	})

	if _, err := a.store.AddEntry(ctx, &database.Entry{
		Timestamp: ev.Time.Unix(),
		Kind:      database.KindRoom,
		RoomName:  ev.Name,
		RoomOwner: ev.Owner,
	}); err != nil {
		a.logger.ErrorContext(ctx, "failed to persist room entry",
			"room", ev.Name, "error", err)
	}
}

// ExportHistory writes the full chat history through the given exporter in
// both text and JSON form.
func (a *App) ExportHistory(ctx context.Context, ex *export.Exporter) error {
	entries, err := a.store.AllEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history for export: %w", err)
	}
	textPath, err := ex.ExportText(entries)
	if err != nil {
		return err
	}
	jsonPath, err := ex.ExportJSON(entries)
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "exported chat history",
		"entries", len(entries), "text_path", textPath, "json_path", jsonPath)
	return nil
}

// refreshAnnotations re-tags the durable history and re-annotates the live
// log after the word list changed. Failures are logged, never fatal.
func (a *App) refreshAnnotations() {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), retagTimeout)
	defer cancel()

	changed, err := a.store.UpdateProfanityFlags(ctx, a.index)
	if err != nil {
		a.logger.Error("history re-tag failed", "error", err)
	} else if changed > 0 {
		a.logger.Info("history re-tagged", "changed", changed)
	}

	a.cache.Reannotate(a.index)
}

// Run starts the scheduler and blocks until ctx is cancelled, then shuts
// everything down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		<-gCtx.Done()
		if err := a.scheduler.Stop(); err != nil {
			a.logger.Error("error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	a.index.Close()

	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("stopped due to error", "error", err)
		return err
	}
	a.logger.Info("stopped gracefully")
	return nil
}
