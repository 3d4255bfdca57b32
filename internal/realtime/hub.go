package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Client represents a single websocket client connection.
// We keep it minimal here; the actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Transport is the fan-out capability the relay is written against: room
// membership plus the three delivery shapes (room broadcast, unicast,
// global broadcast). Hub is the production implementation; tests use a fake.
type Transport interface {
	// Join adds a connection to a room. Returns false if it was already a member.
	Join(connID, room string) bool
	// Leave removes a connection from a room. No-op if it was not a member.
	Leave(connID, room string)
	// BroadcastToRoom delivers an event to every member of a room except skipConnID.
	// An empty skipConnID delivers to all members.
	BroadcastToRoom(room, skipConnID, event string, payload any)
	// Unicast delivers an event to one connection. Returns false if it is gone.
	Unicast(connID, event string, payload any) bool
	// BroadcastGlobal delivers an event to every registered connection.
	BroadcastGlobal(event string, payload any)
}

// Hub tracks live connections and their room memberships and implements
// Transport over them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]Client              // connID -> client
	rooms   map[string]map[string]struct{} // room -> connIDs
	joined  map[string]map[string]struct{} // connID -> rooms, for cleanup
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]Client),
		rooms:   make(map[string]map[string]struct{}),
		joined:  make(map[string]map[string]struct{}),
	}
}

// Register adds a live connection under its connection ID.
func (h *Hub) Register(connID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[connID] = client
}

// Unregister removes a connection and drops it from every room it had joined.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, connID)
	for room := range h.joined[connID] {
		h.removeFromRoomLocked(connID, room)
	}
	delete(h.joined, connID)
}

// Join implements Transport. Joining twice is idempotent.
func (h *Hub) Join(connID, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[connID]; !ok {
		return false
	}
	if _, ok := h.rooms[room][connID]; ok {
		return false
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]struct{})
	}
	h.rooms[room][connID] = struct{}{}
	if h.joined[connID] == nil {
		h.joined[connID] = make(map[string]struct{})
	}
	h.joined[connID][room] = struct{}{}
	return true
}

// Leave implements Transport. Leaving a room twice is idempotent.
func (h *Hub) Leave(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoomLocked(connID, room)
	if rooms, ok := h.joined[connID]; ok {
		delete(rooms, room)
	}
}

func (h *Hub) removeFromRoomLocked(connID, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// BroadcastToRoom implements Transport.
func (h *Hub) BroadcastToRoom(room, skipConnID, event string, payload any) {
	msg, ok := encode(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID := range h.rooms[room] {
		if connID == skipConnID {
			continue
		}
		if c, ok := h.clients[connID]; ok {
			if sent := c.Send(msg); !sent {
				// client write failed; the ws handler cleans it up on its side
			}
		}
	}
}

// Unicast implements Transport.
func (h *Hub) Unicast(connID, event string, payload any) bool {
	msg, ok := encode(event, payload)
	if !ok {
		return false
	}
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return c.Send(msg)
}

// BroadcastGlobal implements Transport.
func (h *Hub) BroadcastGlobal(event string, payload any) {
	msg, ok := encode(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		_ = c.Send(msg)
	}
}

// RoomSize returns how many connections are in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func encode(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("realtime: failed to encode %s payload: %v", event, err)
		return nil, false
	}
	msg, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("realtime: failed to encode %s envelope: %v", event, err)
		return nil, false
	}
	return msg, true
}
