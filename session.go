package main

import "sync"

// Session binds a connection to the room it created or joined. The directory
// holds ids only; the Registry stays the sole owner of Room values.
type Session struct {
	RoomID string
	Name   string
	IsHost bool
}

type SessionDirectory struct {
	mu       sync.RWMutex
	sessions map[string]Session // connID → session
}

func NewSessionDirectory() *SessionDirectory {
	return &SessionDirectory{sessions: make(map[string]Session)}
}

// Bind records (or overwrites) the session for a connection.
func (d *SessionDirectory) Bind(connID, roomID, name string, isHost bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[connID] = Session{RoomID: roomID, Name: name, IsHost: isHost}
}

// Resolve looks up the session for a connection. A miss means the connection
// has no room context; callers treat that as a no-op, not an error.
func (d *SessionDirectory) Resolve(connID string) (Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sessions[connID]
	return s, ok
}

// Unbind drops the session. Idempotent.
func (d *SessionDirectory) Unbind(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, connID)
}

func (d *SessionDirectory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}
