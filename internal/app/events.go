package app

import "time"

// ChatEvent is an incoming chat line from the network layer. The app treats
// it as an opaque input record; annotation happens here, not at the source.
type ChatEvent struct {
	Name             string    `json:"name"`
	Message          string    `json:"message"`
	ChatType         string    `json:"chat_type"`
	Whisper          bool      `json:"whisper"`
	WhisperRecipient string    `json:"whisper_recipient"`
	Time             time.Time `json:"time"`
}

// ActionEvent is a user action observed in the room, such as entering or
// being kicked.
type ActionEvent struct {
	UserName string    `json:"user_name"`
	Action   string    `json:"action"`
	Time     time.Time `json:"time"`
}

// RoomEvent marks entry into a room.
type RoomEvent struct {
	RoomID int64     `json:"room_id"`
	Name   string    `json:"name"`
	Owner  string    `json:"owner"`
	Time   time.Time `json:"time"`
}
