package collab

import (
	"sync"

	"go.uber.org/zap"
)

// Hub owns the room table. Rooms are created on first join and evicted
// when the last member leaves.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	logger *zap.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]*Room),
		logger: logger,
	}
}

// Join adds the member to the named room, creating it if needed, and
// delivers the catch-up snapshot to the member. Membership insertion
// happens under the hub lock so a concurrent last-member Leave cannot
// evict the room out from under the newcomer.
func (h *Hub) Join(roomID string, m Member) *Room {
	h.mu.Lock()
	room, ok := h.rooms[roomID]
	if !ok {
		room = newRoom(roomID)
		h.rooms[roomID] = room
		h.logger.Info("room created", zap.String("room", roomID))
	}
	snapshot := room.Join(m)
	h.mu.Unlock()

	m.Send(snapshot)

	h.logger.Info("member joined",
		zap.String("room", roomID),
		zap.String("member", m.ID()),
	)
	return room
}

// Leave removes the member and evicts the room once empty. Removal and
// eviction are one atomic step under the hub lock.
func (h *Hub) Leave(roomID, memberID string) {
	h.mu.Lock()
	room, ok := h.rooms[roomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	remaining := room.Leave(memberID)
	if remaining == 0 {
		delete(h.rooms, roomID)
		h.logger.Info("room evicted", zap.String("room", roomID))
	}
	h.mu.Unlock()

	h.logger.Info("member left",
		zap.String("room", roomID),
		zap.String("member", memberID),
	)
}

// Room looks up an existing room.
func (h *Hub) Room(roomID string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	return room, ok
}

// RoomCount returns the number of live rooms.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
