// Package main contains the entrypoint for the roomlog chat companion.
// Events arrive as JSON lines on standard input, one envelope per line,
// emitted by the in-client network layer.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/halsted/roomlog/internal/app"
	"github.com/halsted/roomlog/internal/config"
	"github.com/halsted/roomlog/internal/database"
	"github.com/halsted/roomlog/internal/export"
	"github.com/halsted/roomlog/internal/livelog"
	"github.com/halsted/roomlog/internal/logger"
	"github.com/halsted/roomlog/internal/profanity"
	"github.com/halsted/roomlog/internal/scheduler"
	"github.com/halsted/roomlog/internal/tasks"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components, starts the event intake and run loop, and
// returns the process exit code.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.DB.Path)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DB.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)

	store, err := database.NewStore(db, log)
	if err != nil {
		log.Error("failed to initialize store", "error", err)
		return 1
	}

	index := profanity.NewIndex(log,
		profanity.WithStore(profanity.NewFileWordStore(cfg.Profanity.WordsPath)),
		profanity.WithDebounce(cfg.Profanity.Debounce),
	)
	index.SetEnabled(cfg.Profanity.Enabled)

	cache := livelog.NewCache(log)

	registry := tasks.NewTaskRegistry(store, cache, cfg.LiveLog.Retention)
	sched, err := scheduler.NewScheduler(log, &cfg.Scheduler, registry)
	if err != nil {
		log.Error("failed to create scheduler", "error", err)
		return 1
	}

	a := app.New(log, index, store, cache, sched)

	exporter := export.New(export.DirWriter{Dir: cfg.Export.Dir}, log)
	go exportOnSignal(ctx, log, a, exporter)

	go readEvents(ctx, log, a)

	if err := a.Run(ctx); err != nil {
		return 1
	}
	return 0
}

// exportOnSignal writes a full history export each time the process
// receives SIGUSR1.
func exportOnSignal(ctx context.Context, log *slog.Logger, a *app.App, exporter *export.Exporter) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			if err := a.ExportHistory(ctx, exporter); err != nil {
				log.Error("history export failed", "error", err)
			}
		}
	}
}

// envelope is one line of the stdin event feed.
type envelope struct {
	Type   string           `json:"type"`
	Chat   *app.ChatEvent   `json:"chat,omitempty"`
	Action *app.ActionEvent `json:"action,omitempty"`
	Room   *app.RoomEvent   `json:"room,omitempty"`
}

// readEvents decodes the stdin feed until EOF or shutdown. Malformed lines
// are logged and skipped; the feed must survive a glitchy producer.
func readEvents(ctx context.Context, log *slog.Logger, a *app.App) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev envelope
		if err := json.Unmarshal(line, &ev); err != nil {
			log.Warn("skipping malformed event line", "error", err)
			continue
		}

		switch {
		case ev.Type == "chat" && ev.Chat != nil:
			a.OnChat(ctx, *ev.Chat)
		case ev.Type == "action" && ev.Action != nil:
			a.OnAction(ctx, *ev.Action)
		case ev.Type == "room" && ev.Room != nil:
			a.OnRoomEnter(ctx, *ev.Room)
		default:
			log.Warn("skipping event with unknown type", "type", ev.Type)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		log.Error("event feed read failed", "error", err)
		return
	}
	log.Info("event feed closed")
}
