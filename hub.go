package main

import (
	"context"
	"log"
	"sync"
	"time"
)

// Hub owns every live connection and the room groups they belong to. It is
// the only component that writes to client send buffers, through three
// primitives: Unicast, Groupcast, Broadcast. Registration runs through
// channels consumed by Run so pump startup and teardown happen in one place.
type Hub struct {
	cfg      *Config
	registry *Registry
	sessions *SessionDirectory

	// dispatcher is set once by SetDispatcher before Run starts; the hub
	// hands it disconnect cleanup.
	dispatcher *Dispatcher

	mu         sync.RWMutex
	conns      map[string]*Client            // connID → client
	groups     map[string]map[string]*Client // roomID → connID → client
	membership map[string]string             // connID → roomID

	registerCh   chan *Client
	unregisterCh chan *Client
}

func NewHub(cfg *Config, registry *Registry, sessions *SessionDirectory) *Hub {
	return &Hub{
		cfg:          cfg,
		registry:     registry,
		sessions:     sessions,
		conns:        make(map[string]*Client),
		groups:       make(map[string]map[string]*Client),
		membership:   make(map[string]string),
		registerCh:   make(chan *Client, 64),
		unregisterCh: make(chan *Client, 64),
	}
}

func (h *Hub) SetDispatcher(d *Dispatcher) {
	h.dispatcher = d
}

func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.registerCh:
			h.addConn(client)

		case client := <-h.unregisterCh:
			h.removeConn(client)

		case <-ticker.C:
			h.sweepStaleRooms()
		}
	}
}

func (h *Hub) Register(c *Client) {
	h.registerCh <- c
}

func (h *Hub) Unregister(c *Client) {
	h.unregisterCh <- c
}

// Unicast sends one frame to one connection. Unknown connIDs and nil frames
// are dropped.
func (h *Hub) Unicast(connID string, data []byte) {
	if data == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.conns[connID]; ok {
		c.enqueue(data)
	}
}

// Groupcast sends one frame to every connection in a room group, the sender
// included.
func (h *Hub) Groupcast(roomID string, data []byte) {
	if data == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.groups[roomID] {
		c.enqueue(data)
	}
}

// Broadcast sends one frame to every connection.
func (h *Hub) Broadcast(data []byte) {
	if data == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns {
		c.enqueue(data)
	}
}

// BroadcastRoomList pushes the current joinable list to everyone. Fired after
// any roster or registry change.
func (h *Hub) BroadcastRoomList() {
	h.Broadcast(encodeMessage(msgRoomList, roomListData{Entries: h.registry.ListJoinable()}))
}

// JoinGroup puts a connection into a room group. A connection belongs to at
// most one group; joining again moves it.
func (h *Hub) JoinGroup(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connID]
	if !ok {
		return
	}
	h.leaveGroupLocked(connID)

	group, ok := h.groups[roomID]
	if !ok {
		group = make(map[string]*Client)
		h.groups[roomID] = group
	}
	group[connID] = c
	h.membership[connID] = roomID
}

// LeaveGroup removes a connection from its room group, if any. Idempotent.
func (h *Hub) LeaveGroup(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveGroupLocked(connID)
}

func (h *Hub) leaveGroupLocked(connID string) {
	roomID, ok := h.membership[connID]
	if !ok {
		return
	}
	delete(h.membership, connID)
	if group, ok := h.groups[roomID]; ok {
		delete(group, connID)
		if len(group) == 0 {
			delete(h.groups, roomID)
		}
	}
}

func (h *Hub) GroupSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[roomID])
}

func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) addConn(c *Client) {
	h.mu.Lock()
	h.conns[c.connID] = c
	h.mu.Unlock()

	log.Printf("connection %s opened (ip=%s)", shortID(c.connID), c.ip)

	go c.readPump()
	go c.writePump()
}

// removeConn runs the disconnect path exactly once per connection: the conn
// map entry is the guard, so a repeated unregister is a no-op.
func (h *Hub) removeConn(c *Client) {
	h.mu.Lock()
	if _, ok := h.conns[c.connID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, c.connID)
	h.leaveGroupLocked(c.connID)
	h.mu.Unlock()

	h.dispatcher.HandleDisconnect(c.connID)
	c.Close()
	log.Printf("connection %s closed", shortID(c.connID))
}

// shortID abbreviates a uuid connection id for log lines. Ids shorter than
// the fragment pass through whole.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// sweepStaleRooms reclaims rooms idle past the configured threshold and
// drops their groups and sessions. The room list goes out on every tick,
// swept or not.
func (h *Hub) sweepStaleRooms() {
	swept := h.registry.SweepStale(h.cfg.RoomIdleTimeout)

	if len(swept) > 0 {
		h.mu.Lock()
		for _, roomID := range swept {
			for connID := range h.groups[roomID] {
				delete(h.membership, connID)
				h.sessions.Unbind(connID)
			}
			delete(h.groups, roomID)
		}
		h.mu.Unlock()

		for _, roomID := range swept {
			log.Printf("swept inactive game %s", roomID)
		}
	}

	h.BroadcastRoomList()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.conns {
		c.Close()
	}
	h.conns = make(map[string]*Client)
	h.groups = make(map[string]map[string]*Client)
	h.membership = make(map[string]string)
}
