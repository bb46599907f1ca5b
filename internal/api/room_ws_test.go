package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderoom/internal/collab"
	"coderoom/internal/engine"
)

func dialRoom(t *testing.T, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/rooms/" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until one of the wanted type arrives, skipping
// unrelated broadcasts.
func readUntil(t *testing.T, conn *websocket.Conn, want collab.MessageType) collab.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg collab.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
	}
}

func TestRoomWebSocketCollaboration(t *testing.T) {
	eng := &fakeEngine{result: &engine.Result{
		Stdout:   "hello\n",
		ExitCode: 0,
		Status:   engine.StatusCompleted,
	}}
	srv := httptest.NewServer(newTestRouter(eng))
	defer srv.Close()

	alice := dialRoom(t, srv, "r1")
	sync := readUntil(t, alice, collab.MessageSync)
	require.Len(t, sync.Members, 1)

	bob := dialRoom(t, srv, "r1")
	readUntil(t, bob, collab.MessageSync)
	readUntil(t, alice, collab.MessageJoin)

	// Alice edits; Bob sees the new document.
	require.NoError(t, alice.WriteJSON(collab.Message{
		Type:     collab.MessageCode,
		Data:     `print("hello")`,
		Language: "python",
	}))
	code := readUntil(t, bob, collab.MessageCode)
	assert.Equal(t, `print("hello")`, code.Data)
	assert.Equal(t, "python", code.Language)

	// Bob chats; both sides see the line.
	require.NoError(t, bob.WriteJSON(collab.Message{
		Type: collab.MessageChat,
		Data: "ready?",
	}))
	assert.Equal(t, "ready?", readUntil(t, alice, collab.MessageChat).Data)
	assert.Equal(t, "ready?", readUntil(t, bob, collab.MessageChat).Data)

	// Alice runs the room's code and is the only one who gets the result.
	require.NoError(t, alice.WriteJSON(collab.Message{Type: collab.MessageRun}))
	result := readUntil(t, alice, collab.MessageResult)
	require.NotNil(t, result.Result)
	assert.Equal(t, "hello\n", result.Result.Stdout)
	assert.Equal(t, engine.StatusCompleted, result.Result.Status)

	// The engine was handed the shared document, not transport framing.
	assert.Equal(t, `print("hello")`, eng.last().Code)
	assert.Equal(t, "python", eng.last().Language)
}

func TestRoomWebSocketCursorBroadcast(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(&fakeEngine{}))
	defer srv.Close()

	alice := dialRoom(t, srv, "cursors")
	readUntil(t, alice, collab.MessageSync)
	bob := dialRoom(t, srv, "cursors")
	readUntil(t, bob, collab.MessageSync)

	require.NoError(t, alice.WriteJSON(collab.Message{
		Type:   collab.MessageCursor,
		Cursor: &collab.Cursor{Line: 10, Column: 4},
	}))

	msg := readUntil(t, bob, collab.MessageCursor)
	require.NotNil(t, msg.Cursor)
	assert.Equal(t, 10, msg.Cursor.Line)
	assert.Equal(t, 4, msg.Cursor.Column)
}
