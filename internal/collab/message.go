package collab

import (
	"time"

	"coderoom/internal/engine"
)

// MessageType discriminates websocket frames in both directions.
type MessageType string

const (
	// MessageSync is the snapshot sent to a member right after joining.
	MessageSync MessageType = "sync"
	// MessageJoin and MessageLeave are membership notices.
	MessageJoin  MessageType = "join"
	MessageLeave MessageType = "leave"
	// MessageCode carries the full document after an edit.
	MessageCode MessageType = "code"
	// MessageCursor carries one member's cursor position.
	MessageCursor MessageType = "cursor"
	// MessageChat carries a chat line.
	MessageChat MessageType = "chat"
	// MessageRun asks the engine to execute the room's current code;
	// MessageResult relays the outcome to the requesting member only.
	MessageRun    MessageType = "run"
	MessageResult MessageType = "result"
)

// Cursor is a member's position in the shared document.
type Cursor struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ChatEntry is one line of room chat history.
type ChatEntry struct {
	From   string    `json:"from"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sentAt"`
}

// Message is the single frame shape exchanged with clients. Fields are
// populated per type; unused ones are omitted on the wire.
type Message struct {
	Type     MessageType `json:"type"`
	From     string      `json:"from,omitempty"`
	Data     string      `json:"data,omitempty"`
	Language string      `json:"language,omitempty"`

	Cursor *Cursor `json:"cursor,omitempty"`

	// Snapshot fields, sync only.
	Members []string          `json:"members,omitempty"`
	Cursors map[string]Cursor `json:"cursors,omitempty"`
	Chat    []ChatEntry       `json:"chat,omitempty"`

	// Run request options and its relayed result.
	Options engine.Options `json:"options,omitempty"`
	Result  *engine.Result `json:"result,omitempty"`
}
