// Package moderation records mute/kick/ban intents and carries out the ones
// aimed at users who are not currently in the room once they next appear.
package moderation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RoomActions is the slice of the network layer the moderator needs.
// Implementations send the actual room packets.
type RoomActions interface {
	// IsPresent reports whether a user with the given name is in the room.
	IsPresent(userName string) bool
	// Mute silences a user for the given number of minutes; 0 unmutes.
	Mute(userName string, minutes int) error
	// Kick removes a user from the room.
	Kick(userName string) error
	// Ban bans a user using a duration label such as "hour" or "perm".
	Ban(userName string, duration string) error
}

// Notifier receives a human-readable record of every action taken so it can
// be appended to the chat log.
type Notifier func(userName, action string)

// deferredData is the on-disk shape: intents keyed by room id, then by user
// name.
type deferredData struct {
	Bans  map[int64]map[string]string `json:"bans"`
	Mutes map[int64]map[string]int    `json:"mutes"`
}

func newDeferredData() deferredData {
	return deferredData{
		Bans:  make(map[int64]map[string]string),
		Mutes: make(map[int64]map[string]int),
	}
}

// Moderator applies room moderation immediately when the target is present
// and defers it otherwise. Deferred intents survive restarts via a JSON file;
// a missing or corrupt file starts empty.
type Moderator struct {
	logger *slog.Logger
	room   RoomActions
	notify Notifier
	path   string

	mu       sync.Mutex
	roomID   int64
	data     deferredData
	haveRoom bool
}

// NewModerator loads any previously deferred intents from path.
func NewModerator(room RoomActions, path string, notify Notifier, logger *slog.Logger) *Moderator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if notify == nil {
		notify = func(string, string) {}
	}
	m := &Moderator{
		logger: logger.With("component", "moderation"),
		room:   room,
		notify: notify,
		path:   path,
		data:   newDeferredData(),
	}
	m.load()
	return m
}

func (m *Moderator) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("failed to read deferred moderation data, starting empty", "error", err)
		}
		return
	}
	var loaded deferredData
	if err := json.Unmarshal(data, &loaded); err != nil {
		m.logger.Warn("deferred moderation data is corrupt, starting empty", "error", err)
		return
	}
	if loaded.Bans == nil {
		loaded.Bans = make(map[int64]map[string]string)
	}
	if loaded.Mutes == nil {
		loaded.Mutes = make(map[int64]map[string]int)
	}
	m.data = loaded
}

// saveLocked writes the deferred intents. Callers hold m.mu.
func (m *Moderator) saveLocked() {
	data, err := json.Marshal(m.data)
	if err != nil {
		m.logger.Error("failed to encode deferred moderation data", "error", err)
		return
	}
	if dir := filepath.Dir(m.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			m.logger.Error("failed to create deferred moderation directory", "error", err)
			return
		}
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		m.logger.Error("failed to persist deferred moderation data", "error", err)
	}
}

// OnRoomEntered sets the active room. Deferred intents are kept per room and
// only apply while that room is current.
func (m *Moderator) OnRoomEntered(roomID int64) {
	m.mu.Lock()
	m.roomID = roomID
	m.haveRoom = true
	m.mu.Unlock()
}

// OnRoomLeft clears the active room; moderation requests fail until the next
// OnRoomEntered.
func (m *Moderator) OnRoomLeft() {
	m.mu.Lock()
	m.haveRoom = false
	m.mu.Unlock()
}

// MuteUser mutes a present user immediately, or records the intent for the
// current room when the user is absent.
func (m *Moderator) MuteUser(userName string, minutes int) error {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return errors.New("user name is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.haveRoom {
		return errors.New("not in a room")
	}

	if m.room.IsPresent(userName) {
		if err := m.room.Mute(userName, minutes); err != nil {
			return fmt.Errorf("failed to mute %s: %w", userName, err)
		}
		m.notify(userName, fmt.Sprintf("was muted for %d minutes", minutes))
		return nil
	}

	roomMutes, ok := m.data.Mutes[m.roomID]
	if !ok {
		roomMutes = make(map[string]int)
		m.data.Mutes[m.roomID] = roomMutes
	}
	roomMutes[normalizeName(userName)] = minutes
	m.saveLocked()
	m.logger.Info("mute deferred until user appears", "user", userName, "minutes", minutes)
	return nil
}

// UnmuteUser lifts a mute on a present user and drops any deferred mute.
func (m *Moderator) UnmuteUser(userName string) error {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return errors.New("user name is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.haveRoom {
		return errors.New("not in a room")
	}

	if roomMutes, ok := m.data.Mutes[m.roomID]; ok {
		if _, deferred := roomMutes[normalizeName(userName)]; deferred {
			delete(roomMutes, normalizeName(userName))
			if len(roomMutes) == 0 {
				delete(m.data.Mutes, m.roomID)
			}
			m.saveLocked()
		}
	}

	if m.room.IsPresent(userName) {
		if err := m.room.Mute(userName, 0); err != nil {
			return fmt.Errorf("failed to unmute %s: %w", userName, err)
		}
		m.notify(userName, "was unmuted")
	}
	return nil
}

// KickUser kicks a present user. Kicks are never deferred; an absent user is
// already out of the room.
func (m *Moderator) KickUser(userName string) error {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return errors.New("user name is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.haveRoom {
		return errors.New("not in a room")
	}
	if !m.room.IsPresent(userName) {
		return fmt.Errorf("%s is not in the room", userName)
	}
	if err := m.room.Kick(userName); err != nil {
		return fmt.Errorf("failed to kick %s: %w", userName, err)
	}
	m.notify(userName, "was kicked from the room")
	return nil
}

// BanUser bans a present user immediately, or records the intent for the
// current room when the user is absent.
func (m *Moderator) BanUser(userName, duration string) error {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return errors.New("user name is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.haveRoom {
		return errors.New("not in a room")
	}

	if m.room.IsPresent(userName) {
		if err := m.room.Ban(userName, duration); err != nil {
			return fmt.Errorf("failed to ban %s: %w", userName, err)
		}
		m.notify(userName, fmt.Sprintf("was banned (%s)", duration))
		return nil
	}

	roomBans, ok := m.data.Bans[m.roomID]
	if !ok {
		roomBans = make(map[string]string)
		m.data.Bans[m.roomID] = roomBans
	}
	roomBans[normalizeName(userName)] = duration
	m.saveLocked()
	m.logger.Info("ban deferred until user appears", "user", userName, "duration", duration)
	return nil
}

// OnUserEntered applies any deferred intent recorded for this user in the
// current room, then clears it.
func (m *Moderator) OnUserEntered(userName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.haveRoom {
		return
	}
	key := normalizeName(userName)

	if roomBans, ok := m.data.Bans[m.roomID]; ok {
		if duration, deferred := roomBans[key]; deferred {
			if err := m.room.Ban(userName, duration); err != nil {
				m.logger.Error("failed to apply deferred ban", "user", userName, "error", err)
				return
			}
			delete(roomBans, key)
			if len(roomBans) == 0 {
				delete(m.data.Bans, m.roomID)
			}
			m.saveLocked()
			m.notify(userName, fmt.Sprintf("was banned (%s)", duration))
			return
		}
	}

	if roomMutes, ok := m.data.Mutes[m.roomID]; ok {
		if minutes, deferred := roomMutes[key]; deferred {
			if err := m.room.Mute(userName, minutes); err != nil {
				m.logger.Error("failed to apply deferred mute", "user", userName, "error", err)
				return
			}
			delete(roomMutes, key)
			if len(roomMutes) == 0 {
				delete(m.data.Mutes, m.roomID)
			}
			m.saveLocked()
			m.notify(userName, fmt.Sprintf("was muted for %d minutes", minutes))
		}
	}
}

// DeferredCounts reports how many deferred bans and mutes exist for the
// current room.
func (m *Moderator) DeferredCounts() (bans, mutes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.haveRoom {
		return 0, 0
	}
	return len(m.data.Bans[m.roomID]), len(m.data.Mutes[m.roomID])
}

// normalizeName folds user names for case-insensitive matching.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
