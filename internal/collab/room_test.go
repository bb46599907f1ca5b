package collab

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMember records everything it is sent.
type fakeMember struct {
	id string

	mu       sync.Mutex
	received []Message
}

func newFakeMember(id string) *fakeMember {
	return &fakeMember{id: id}
}

func (m *fakeMember) ID() string { return m.id }

func (m *fakeMember) Send(msg Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, msg)
	return true
}

func (m *fakeMember) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.received))
	copy(out, m.received)
	return out
}

func (m *fakeMember) messagesOfType(t MessageType) []Message {
	var out []Message
	for _, msg := range m.messages() {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

func TestJoinReturnsSnapshot(t *testing.T) {
	room := newRoom("r1")
	alice := newFakeMember("alice")

	room.SetCode("", "print(1)", "python")
	snapshot := room.Join(alice)

	assert.Equal(t, MessageSync, snapshot.Type)
	assert.Equal(t, "print(1)", snapshot.Data)
	assert.Equal(t, "python", snapshot.Language)
	assert.Contains(t, snapshot.Members, "alice")
}

func TestJoinNotifiesExistingMembers(t *testing.T) {
	room := newRoom("r1")
	alice := newFakeMember("alice")
	bob := newFakeMember("bob")

	room.Join(alice)
	room.Join(bob)

	joins := alice.messagesOfType(MessageJoin)
	require.Len(t, joins, 1)
	assert.Equal(t, "bob", joins[0].From)

	// The newcomer gets the snapshot instead of its own join notice.
	assert.Empty(t, bob.messagesOfType(MessageJoin))
}

func TestSetCodeBroadcastsToOthersOnly(t *testing.T) {
	room := newRoom("r1")
	alice := newFakeMember("alice")
	bob := newFakeMember("bob")
	room.Join(alice)
	room.Join(bob)

	room.SetCode("alice", "x = 1", "python")

	bobCodes := bob.messagesOfType(MessageCode)
	require.Len(t, bobCodes, 1)
	assert.Equal(t, "x = 1", bobCodes[0].Data)
	assert.Equal(t, "alice", bobCodes[0].From)

	assert.Empty(t, alice.messagesOfType(MessageCode))

	code, lang := room.Document()
	assert.Equal(t, "x = 1", code)
	assert.Equal(t, "python", lang)
}

func TestSetCursorTrackedPerMember(t *testing.T) {
	room := newRoom("r1")
	alice := newFakeMember("alice")
	bob := newFakeMember("bob")
	room.Join(alice)
	room.Join(bob)

	room.SetCursor("alice", Cursor{Line: 3, Column: 7})

	cursors := bob.messagesOfType(MessageCursor)
	require.Len(t, cursors, 1)
	require.NotNil(t, cursors[0].Cursor)
	assert.Equal(t, 3, cursors[0].Cursor.Line)
	assert.Equal(t, 7, cursors[0].Cursor.Column)

	// A later joiner sees the cursor in the snapshot.
	carol := newFakeMember("carol")
	snapshot := room.Join(carol)
	assert.Equal(t, Cursor{Line: 3, Column: 7}, snapshot.Cursors["alice"])
}

func TestChatBroadcastsToEveryoneAndIsBounded(t *testing.T) {
	room := newRoom("r1")
	alice := newFakeMember("alice")
	room.Join(alice)

	room.AddChat("alice", "hello")
	chats := alice.messagesOfType(MessageChat)
	require.Len(t, chats, 1, "sender must see its own chat line")

	for i := 0; i < chatHistoryLimit+50; i++ {
		room.AddChat("alice", fmt.Sprintf("msg %d", i))
	}

	bob := newFakeMember("bob")
	snapshot := room.Join(bob)
	require.Len(t, snapshot.Chat, chatHistoryLimit)
	// Oldest entries were evicted.
	assert.Equal(t, fmt.Sprintf("msg %d", 50), snapshot.Chat[0].Body)
}

func TestLeaveRemovesCursorAndNotifies(t *testing.T) {
	room := newRoom("r1")
	alice := newFakeMember("alice")
	bob := newFakeMember("bob")
	room.Join(alice)
	room.Join(bob)
	room.SetCursor("bob", Cursor{Line: 1})

	remaining := room.Leave("bob")
	assert.Equal(t, 1, remaining)

	leaves := alice.messagesOfType(MessageLeave)
	require.Len(t, leaves, 1)
	assert.Equal(t, "bob", leaves[0].From)

	carol := newFakeMember("carol")
	snapshot := room.Join(carol)
	assert.NotContains(t, snapshot.Cursors, "bob")
	assert.NotContains(t, snapshot.Members, "bob")
}

func TestLeaveUnknownMemberIsNoOp(t *testing.T) {
	room := newRoom("r1")
	alice := newFakeMember("alice")
	room.Join(alice)

	assert.Equal(t, 1, room.Leave("nobody"))
	assert.Empty(t, alice.messagesOfType(MessageLeave))
}
