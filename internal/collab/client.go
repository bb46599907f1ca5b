package collab

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"coderoom/internal/engine"
)

// sendBuffer is the per-client outbound queue. A member that cannot
// keep up has messages dropped rather than stalling the room.
const sendBuffer = 64

// Client binds one websocket connection to a room membership.
type Client struct {
	id     string
	conn   *websocket.Conn
	hub    *Hub
	roomID string
	room   *Room
	eng    engine.Engine
	logger *zap.Logger

	mu     sync.Mutex
	send   chan Message
	closed bool
}

// NewClient wraps an upgraded connection. Serve must be called to start
// the pumps.
func NewClient(conn *websocket.Conn, hub *Hub, roomID string, eng engine.Engine, logger *zap.Logger) *Client {
	return &Client{
		id:     uuid.NewString(),
		conn:   conn,
		hub:    hub,
		roomID: roomID,
		eng:    eng,
		send:   make(chan Message, sendBuffer),
		logger: logger,
	}
}

// ID returns the member identifier.
func (c *Client) ID() string {
	return c.id
}

// Send queues a message without blocking. Returns false when the client
// has gone away or is too far behind and the message was dropped.
func (c *Client) Send(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.logger.Warn("dropping message for slow client",
			zap.String("member", c.id),
			zap.String("type", string(msg.Type)),
		)
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Serve joins the room and runs the read loop until the connection
// drops, then leaves and tears the connection down.
func (c *Client) Serve() {
	c.room = c.hub.Join(c.roomID, c)
	go c.writePump()

	defer func() {
		c.hub.Leave(c.roomID, c.id)
		c.closeSend()
	}()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case MessageCode:
			c.room.SetCode(c.id, msg.Data, msg.Language)
		case MessageCursor:
			if msg.Cursor != nil {
				c.room.SetCursor(c.id, *msg.Cursor)
			}
		case MessageChat:
			c.room.AddChat(c.id, msg.Data)
		case MessageRun:
			go c.runCode(msg.Options)
		}
	}
}

// runCode executes the room's current document and relays the result to
// this member only.
func (c *Client) runCode(opts engine.Options) {
	code, lang := c.room.Document()

	result, err := c.eng.Execute(context.Background(), engine.Request{
		Code:     code,
		Language: lang,
		Options:  opts,
	})
	if err != nil {
		c.logger.Error("execution failed before a session existed", zap.Error(err))
		result = &engine.Result{
			Stderr:   err.Error(),
			ExitCode: -1,
			Status:   engine.StatusFailed,
		}
	}

	c.Send(Message{Type: MessageResult, Result: result})
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
