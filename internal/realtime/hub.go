package realtime

import "sync"

// Hub is the room registry: session identifier to the set of connections
// currently admitted to that session's room. Rooms are created lazily on
// first join and discarded when empty. Constructed once per process and
// passed to the broker; there is no ambient global state.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

// NewHub creates an empty room registry
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

// Join adds a client to a session's room, creating the room if needed
func (h *Hub) Join(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[sessionID] = room
	}
	room[c] = struct{}{}
	c.addRoom(sessionID)
}

// Leave removes a client from a session's room, dropping the room when empty
func (h *Hub) Leave(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(sessionID, c)
}

// LeaveAll removes a client from every room it joined and returns the
// session identifiers of the rooms it left.
func (h *Hub) LeaveAll(c *Client) []string {
	sessions := c.roomList()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sessionID := range sessions {
		h.leaveLocked(sessionID, c)
	}
	return sessions
}

func (h *Hub) leaveLocked(sessionID string, c *Client) {
	room, ok := h.rooms[sessionID]
	if !ok {
		return
	}
	delete(room, c)
	c.removeRoom(sessionID)
	if len(room) == 0 {
		delete(h.rooms, sessionID)
	}
}

// Contains reports whether a client is currently in a session's room
func (h *Hub) Contains(sessionID string, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[sessionID][c]
	return ok
}

// RoomSize returns the number of connections in a session's room
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// Broadcast delivers a frame to every room member except the excluded
// client (pass nil to include everyone). Delivery is best-effort: frames
// for a client whose send buffer is full are dropped, never queued.
func (h *Hub) Broadcast(sessionID string, frame []byte, exclude *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for member := range h.rooms[sessionID] {
		if member == exclude {
			continue
		}
		member.trySend(frame)
	}
}
