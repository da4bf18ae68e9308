package main

import (
	"encoding/json"
	"log"
)

// Inbound action types.
const (
	actionCreateRoom = "create-room"
	actionJoinRoom   = "join-room"
	actionGetRooms   = "get-rooms"
	actionToggleTile = "toggle-tile"
	actionSendChat   = "send-chat"
	actionResignRoom = "resign-room"
)

// Outbound message types.
const (
	msgGameCreated = "game-created"
	msgGameJoined  = "game-joined"
	msgRoomList    = "room-list"
	msgTileChanged = "tile-changed"
	msgChatMessage = "chat-message"
	msgPlayerLeft  = "player-left"
	msgError       = "error"
)

// Player is one seat in a room. ID is the owning connection's id.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// ChatEntry is one line of a room's chat log. Author is empty for
// system entries.
type ChatEntry struct {
	Type      string `json:"type"` // chatUser or chatSystem
	Author    string `json:"author,omitempty"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

const (
	chatUser   = "user"
	chatSystem = "system"
)

// RoomState is the full snapshot sent on create/join and player-left.
type RoomState struct {
	ID        string      `json:"id"`
	HostName  string      `json:"hostName"`
	Players   []Player    `json:"players"`
	Board     []int       `json:"board"`
	BoardSize int         `json:"boardSize"`
	Status    string      `json:"status"`
	CreatedAt int64       `json:"createdAt"`
	Messages  []ChatEntry `json:"messages"`
}

// RoomSummary is the joinable-list projection of a room.
type RoomSummary struct {
	ID          string `json:"id"`
	HostName    string `json:"hostName"`
	PlayerCount int    `json:"playerCount"`
	BoardSize   int    `json:"boardSize"`
	CreatedAt   int64  `json:"createdAt"`
}

// Inbound payloads. Every client frame is {"type": ..., ...fields}.

type createRoomPayload struct {
	Name      string `json:"name"`
	BoardSize int    `json:"boardSize"`
}

type joinRoomPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type toggleTilePayload struct {
	Index int `json:"index"`
}

type sendChatPayload struct {
	Text string `json:"text"`
}

// Outbound payloads, carried under "data" in the envelope.

type gameCreatedData struct {
	RoomID string    `json:"roomId"`
	Room   RoomState `json:"room"`
}

type gameJoinedData struct {
	Room RoomState `json:"room"`
}

type roomListData struct {
	Entries []RoomSummary `json:"entries"`
}

type tileChangedData struct {
	Index    int    `json:"index"`
	NewValue int    `json:"newValue"`
	Who      string `json:"who"`
}

type playerLeftData struct {
	Room       RoomState `json:"room"`
	LeftPlayer string    `json:"leftPlayer"`
	Reason     string    `json:"reason"`
}

type errorData struct {
	Message string `json:"message"`
}

type outboundEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// encodeMessage marshals one outbound frame. Payload types above are all
// marshal-safe, so an error here means a programming bug; log and return nil
// (the hub's send primitives skip nil frames).
func encodeMessage(typ string, data any) []byte {
	raw, err := json.Marshal(outboundEnvelope{Type: typ, Data: data})
	if err != nil {
		log.Printf("encode %s: %v", typ, err)
		return nil
	}
	return raw
}
