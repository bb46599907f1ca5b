// Package collab holds real-time room state for shared editing:
// membership, document and cursor broadcast, and chat history. It sits
// outside the execution core and talks to it only through the engine
// entry point, like any other caller.
package collab

import (
	"sync"
	"time"
)

// chatHistoryLimit bounds the retained chat backlog per room.
const chatHistoryLimit = 100

// Member is a participant that can receive room messages. Send must not
// block; it reports whether the message was accepted.
type Member interface {
	ID() string
	Send(msg Message) bool
}

// Room is the mutex-guarded shared state of one editing session. All
// mutation goes through methods; there is no ambient global state.
type Room struct {
	id string

	mu       sync.Mutex
	members  map[string]Member
	code     string
	language string
	cursors  map[string]Cursor
	chat     []ChatEntry
}

func newRoom(id string) *Room {
	return &Room{
		id:       id,
		members:  make(map[string]Member),
		language: "python",
		cursors:  make(map[string]Cursor),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string {
	return r.id
}

// Join adds a member, notifies the others, and returns the snapshot the
// newcomer needs to catch up: current document, members, cursors, chat.
func (r *Room) Join(m Member) Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[m.ID()] = m
	r.broadcastLocked(m.ID(), Message{Type: MessageJoin, From: m.ID()})

	members := make([]string, 0, len(r.members))
	for id := range r.members {
		members = append(members, id)
	}
	cursors := make(map[string]Cursor, len(r.cursors))
	for id, c := range r.cursors {
		cursors[id] = c
	}
	chat := make([]ChatEntry, len(r.chat))
	copy(chat, r.chat)

	return Message{
		Type:     MessageSync,
		Data:     r.code,
		Language: r.language,
		Members:  members,
		Cursors:  cursors,
		Chat:     chat,
	}
}

// Leave removes a member and its cursor, notifies the rest, and returns
// how many members remain so the hub can evict empty rooms.
func (r *Room) Leave(memberID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[memberID]; !ok {
		return len(r.members)
	}
	delete(r.members, memberID)
	delete(r.cursors, memberID)
	r.broadcastLocked(memberID, Message{Type: MessageLeave, From: memberID})
	return len(r.members)
}

// SetCode replaces the shared document and fans the change out to every
// member except the editor.
func (r *Room) SetCode(from, code, lang string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.code = code
	if lang != "" {
		r.language = lang
	}
	r.broadcastLocked(from, Message{
		Type:     MessageCode,
		From:     from,
		Data:     code,
		Language: r.language,
	})
}

// SetCursor records a member's cursor and broadcasts it to the others.
func (r *Room) SetCursor(from string, c Cursor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cursors[from] = c
	r.broadcastLocked(from, Message{Type: MessageCursor, From: from, Cursor: &c})
}

// AddChat appends to the bounded history and broadcasts to everyone,
// the sender included, so all members render the same transcript.
func (r *Room) AddChat(from, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := ChatEntry{From: from, Body: body, SentAt: time.Now()}
	r.chat = append(r.chat, entry)
	if len(r.chat) > chatHistoryLimit {
		r.chat = r.chat[len(r.chat)-chatHistoryLimit:]
	}
	r.broadcastLocked("", Message{Type: MessageChat, From: from, Data: body})
}

// Document returns the current shared code and language.
func (r *Room) Document() (code, lang string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.code, r.language
}

// MemberCount returns the current number of members.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// broadcastLocked sends to every member except the named one. Callers
// hold r.mu; Member.Send is non-blocking so this cannot stall the room.
func (r *Room) broadcastLocked(except string, msg Message) {
	for id, m := range r.members {
		if id == except {
			continue
		}
		m.Send(msg)
	}
}
