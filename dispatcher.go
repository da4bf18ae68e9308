package main

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
)

const (
	reasonResigned     = "resigned"
	reasonDisconnected = "disconnected"
)

var (
	errInvalidName   = errors.New("display name required")
	errAlreadyInRoom = errors.New("already in a game")
	errNotInRoom     = errors.New("not in a game")
)

// Dispatcher maps inbound client actions onto registry/room operations and
// fans the resulting deltas back out through the hub. Every recoverable
// failure becomes an error frame to the initiator only; nothing here is
// fatal to the process.
type Dispatcher struct {
	registry *Registry
	sessions *SessionDirectory
	hub      *Hub
}

func NewDispatcher(registry *Registry, sessions *SessionDirectory, hub *Hub) *Dispatcher {
	return &Dispatcher{registry: registry, sessions: sessions, hub: hub}
}

// Dispatch handles one inbound frame from a connection. Frames are handled
// in arrival order per connection (one read pump each), and room mutation is
// serialized by the room mutex, so every room member observes one consistent
// order of deltas. A panic while handling one frame is contained here so a
// fault in one room cannot take the server down.
func (d *Dispatcher) Dispatch(connID string, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic handling frame from %s: %v", connID, rec)
		}
	}()

	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("malformed frame from %s: %v", connID, err)
		return
	}

	switch env.Type {
	case actionCreateRoom:
		d.handleCreateRoom(connID, data)
	case actionJoinRoom:
		d.handleJoinRoom(connID, data)
	case actionGetRooms:
		d.handleGetRooms(connID)
	case actionToggleTile:
		d.handleToggleTile(connID, data)
	case actionSendChat:
		d.handleSendChat(connID, data)
	case actionResignRoom:
		d.leave(connID, reasonResigned)
	default:
		// Unknown action kinds are ignored.
	}
}

// HandleDisconnect is the transport-level leave. The hub invokes it exactly
// once per closed connection; a resign that already ran leaves no session
// behind, so this becomes a no-op.
func (d *Dispatcher) HandleDisconnect(connID string) {
	d.leave(connID, reasonDisconnected)
}

func (d *Dispatcher) handleCreateRoom(connID string, data []byte) {
	var p createRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		d.fail(connID, err)
		return
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		d.fail(connID, errInvalidName)
		return
	}
	if _, bound := d.sessions.Resolve(connID); bound {
		d.fail(connID, errAlreadyInRoom)
		return
	}

	room, err := d.registry.CreateRoom(connID, name, p.BoardSize)
	if err != nil {
		d.fail(connID, err)
		return
	}

	d.sessions.Bind(connID, room.id, name, true)
	d.hub.JoinGroup(connID, room.id)

	d.hub.Unicast(connID, encodeMessage(msgGameCreated, gameCreatedData{
		RoomID: room.id,
		Room:   room.snapshot(),
	}))
	d.hub.BroadcastRoomList()

	log.Printf("%s created game %s (board %dx%d)", name, room.id, room.boardSize, room.boardSize)
}

func (d *Dispatcher) handleJoinRoom(connID string, data []byte) {
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		d.fail(connID, err)
		return
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		d.fail(connID, errInvalidName)
		return
	}
	if _, bound := d.sessions.Resolve(connID); bound {
		d.fail(connID, errAlreadyInRoom)
		return
	}

	room, ok := d.registry.Get(p.RoomID)
	if !ok {
		d.fail(connID, errRoomNotFound)
		return
	}
	_, entry, err := room.addPlayer(connID, name)
	if err != nil {
		d.fail(connID, err)
		return
	}

	d.sessions.Bind(connID, room.id, name, false)
	d.hub.JoinGroup(connID, room.id)

	d.hub.Groupcast(room.id, encodeMessage(msgGameJoined, gameJoinedData{Room: room.snapshot()}))
	d.hub.Groupcast(room.id, encodeMessage(msgChatMessage, entry))
	d.hub.BroadcastRoomList()

	log.Printf("%s joined game %s", name, room.id)
}

func (d *Dispatcher) handleGetRooms(connID string) {
	d.hub.Unicast(connID, encodeMessage(msgRoomList, roomListData{
		Entries: d.registry.ListJoinable(),
	}))
}

func (d *Dispatcher) handleToggleTile(connID string, data []byte) {
	var p toggleTilePayload
	if err := json.Unmarshal(data, &p); err != nil {
		d.fail(connID, err)
		return
	}

	sess, room, err := d.resolveRoom(connID)
	if err != nil {
		d.fail(connID, err)
		return
	}

	newValue, err := room.toggleTile(p.Index)
	if err != nil {
		d.fail(connID, err)
		return
	}

	d.hub.Groupcast(sess.RoomID, encodeMessage(msgTileChanged, tileChangedData{
		Index:    p.Index,
		NewValue: newValue,
		Who:      sess.Name,
	}))
}

func (d *Dispatcher) handleSendChat(connID string, data []byte) {
	var p sendChatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		d.fail(connID, err)
		return
	}
	if strings.TrimSpace(p.Text) == "" {
		return
	}

	sess, room, err := d.resolveRoom(connID)
	if err != nil {
		d.fail(connID, err)
		return
	}

	entry := room.postChat(sess.Name, p.Text)
	d.hub.Groupcast(sess.RoomID, encodeMessage(msgChatMessage, entry))
}

// resolveRoom maps a connection to the room its session points at. A session
// whose room has been swept is cleaned up on the spot.
func (d *Dispatcher) resolveRoom(connID string) (Session, *Room, error) {
	sess, ok := d.sessions.Resolve(connID)
	if !ok {
		return Session{}, nil, errNotInRoom
	}
	room, ok := d.registry.Get(sess.RoomID)
	if !ok {
		d.sessions.Unbind(connID)
		d.hub.LeaveGroup(connID)
		return Session{}, nil, errRoomNotFound
	}
	return sess, room, nil
}

// leave is the single cleanup path shared by resign and disconnect. The
// session entry is the once-guard: the first leave unbinds it, so a racing
// second leave resolves nothing and returns.
func (d *Dispatcher) leave(connID, reason string) {
	sess, ok := d.sessions.Resolve(connID)
	if !ok {
		return
	}
	d.sessions.Unbind(connID)
	d.hub.LeaveGroup(connID)

	room, ok := d.registry.Get(sess.RoomID)
	if !ok {
		return
	}

	left, entry, empty, removed := room.removePlayer(connID, reason)
	if !removed {
		return
	}

	if empty {
		d.registry.Delete(room.id)
		log.Printf("game %s deleted (last player %s %s)", room.id, left.Name, reason)
	} else {
		d.hub.Groupcast(room.id, encodeMessage(msgChatMessage, entry))
		d.hub.Groupcast(room.id, encodeMessage(msgPlayerLeft, playerLeftData{
			Room:       room.snapshot(),
			LeftPlayer: left.Name,
			Reason:     reason,
		}))
		log.Printf("%s %s, game %s back to waiting", left.Name, reason, room.id)
	}

	d.hub.BroadcastRoomList()
}

func (d *Dispatcher) fail(connID string, err error) {
	d.hub.Unicast(connID, encodeMessage(msgError, errorData{Message: err.Error()}))
}
