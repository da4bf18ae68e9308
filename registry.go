package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	errRoomNotFound = errors.New("game not found")
	errTooManyRooms = errors.New("too many active games")
)

// Registry owns every live Room. Lookup order for ListJoinable is the order
// rooms were created in, so the slice of ids is kept alongside the map.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	order    []string
	maxRooms int
}

func NewRegistry(maxRooms int) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		maxRooms: maxRooms,
	}
}

// CreateRoom builds a room, seats the host, and registers it. Seating
// happens before the room goes into the map so a concurrently listing
// connection can never see (or join ahead of the host in) an empty room.
func (g *Registry) CreateRoom(hostConnID, hostName string, requestedSize int) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.maxRooms > 0 && len(g.rooms) >= g.maxRooms {
		return nil, errTooManyRooms
	}

	id := newRoomID()
	room := newRoom(id, hostName, requestedSize)
	room.seatHost(hostConnID)
	g.rooms[id] = room
	g.order = append(g.order, id)
	return room, nil
}

func (g *Registry) Get(id string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[id]
	return room, ok
}

// Delete removes a room. Deleting an absent id is a no-op.
func (g *Registry) Delete(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleteLocked(id)
}

// ListJoinable returns summaries of every waiting room with a free seat, in
// creation order.
func (g *Registry) ListJoinable() []RoomSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()

	entries := make([]RoomSummary, 0, len(g.order))
	for _, id := range g.order {
		room := g.rooms[id]
		if room != nil && room.isListable() {
			entries = append(entries, room.summary())
		}
	}
	return entries
}

// SweepStale deletes every room idle for longer than threshold and returns
// the ids it removed.
func (g *Registry) SweepStale(threshold time.Duration) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	var swept []string
	for id, room := range g.rooms {
		if room.isStale(now, threshold) {
			g.deleteLocked(id)
			swept = append(swept, id)
		}
	}
	return swept
}

func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

func (g *Registry) deleteLocked(id string) {
	if _, ok := g.rooms[id]; !ok {
		return
	}
	delete(g.rooms, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// newRoomID is collision-resistant across concurrent creations: wall-clock
// millisecond plus a random uuid fragment.
func newRoomID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("game_%d_%s", time.Now().UnixMilli(), suffix)
}
