package main

import (
	"errors"
	"sync"
	"time"
)

const (
	statusWaiting = "waiting"
	statusPlaying = "playing"

	maxPlayersPerRoom = 2
	maxChatEntries    = 50
)

var (
	errRoomFull        = errors.New("game is full")
	errRoomNotJoinable = errors.New("game already in progress")
	errGameNotActive   = errors.New("game is not active")
)

// Room is one two-player game session. All fields behind mu are mutated only
// while holding it; the mutex is the single serialization point required for
// a shared board under concurrent connections.
type Room struct {
	id        string
	hostName  string
	boardSize int
	createdAt time.Time

	mu           sync.Mutex
	players      []Player
	board        board
	status       string
	messages     []ChatEntry
	lastActivity time.Time
}

func newRoom(id, hostName string, requestedSize int) *Room {
	size := clampBoardSize(requestedSize)
	now := time.Now()
	return &Room{
		id:           id,
		hostName:     hostName,
		boardSize:    size,
		createdAt:    now,
		board:        newBoard(size),
		status:       statusWaiting,
		lastActivity: now,
	}
}

// seatHost seats the creating connection as the host player. Called once by
// Registry.CreateRoom, before the room is inserted into the registry map, so
// the room is never visible without its host.
func (r *Room) seatHost(connID string) Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	host := Player{ID: connID, Name: r.hostName, IsHost: true}
	r.players = append(r.players, host)
	return host
}

// addPlayer seats a second player. The join flips the room to playing and
// appends a system chat entry announcing it.
func (r *Room) addPlayer(connID, name string) (Player, ChatEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= maxPlayersPerRoom {
		return Player{}, ChatEntry{}, errRoomFull
	}
	if r.status != statusWaiting {
		return Player{}, ChatEntry{}, errRoomNotJoinable
	}

	p := Player{ID: connID, Name: name, IsHost: false}
	r.players = append(r.players, p)

	if len(r.players) == maxPlayersPerRoom {
		r.status = statusPlaying
	}

	entry := r.appendLocked(ChatEntry{
		Type:      chatSystem,
		Text:      name + " joined the game",
		Timestamp: time.Now().UnixMilli(),
	})
	return p, entry, nil
}

// toggleTile flips a tile. Only allowed while both players are seated.
// Either player may flip any tile; there is no turn order.
func (r *Room) toggleTile(index int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != statusPlaying {
		return 0, errGameNotActive
	}
	v, err := r.board.toggle(index)
	if err != nil {
		return 0, err
	}
	r.lastActivity = time.Now()
	return v, nil
}

// postChat appends a user chat entry, trimming the log to the newest
// maxChatEntries.
func (r *Room) postChat(author, text string) ChatEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.appendLocked(ChatEntry{
		Type:      chatUser,
		Author:    author,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})
}

// removePlayer unseats a player and appends a system entry
// ("<name> resigned" / "<name> disconnected"). empty reports whether the
// room is now unoccupied and should be deleted by the caller; otherwise the
// room drops back to waiting so it shows up as joinable again.
func (r *Room) removePlayer(connID, reason string) (left Player, entry ChatEntry, empty bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.players {
		if p.ID == connID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Player{}, ChatEntry{}, false, false
	}

	left = r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	entry = r.appendLocked(ChatEntry{
		Type:      chatSystem,
		Text:      left.Name + " " + reason,
		Timestamp: time.Now().UnixMilli(),
	})

	if len(r.players) == 0 {
		return left, entry, true, true
	}
	r.status = statusWaiting
	return left, entry, false, true
}

// isListable reports whether the room belongs in the joinable list.
func (r *Room) isListable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == statusWaiting && len(r.players) < maxPlayersPerRoom
}

// isStale reports whether the room has seen no board activity for longer
// than threshold.
func (r *Room) isStale(now time.Time, threshold time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return now.Sub(r.lastActivity) > threshold
}

func (r *Room) playerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// snapshot returns a deep copy of the room for the wire. Nothing the caller
// does with it can alias room state.
func (r *Room) snapshot() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]Player, len(r.players))
	copy(players, r.players)
	tiles := make([]int, len(r.board))
	copy(tiles, r.board)
	messages := make([]ChatEntry, len(r.messages))
	copy(messages, r.messages)

	return RoomState{
		ID:        r.id,
		HostName:  r.hostName,
		Players:   players,
		Board:     tiles,
		BoardSize: r.boardSize,
		Status:    r.status,
		CreatedAt: r.createdAt.UnixMilli(),
		Messages:  messages,
	}
}

func (r *Room) summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RoomSummary{
		ID:          r.id,
		HostName:    r.hostName,
		PlayerCount: len(r.players),
		BoardSize:   r.boardSize,
		CreatedAt:   r.createdAt.UnixMilli(),
	}
}

// appendLocked appends to the chat log and drops the oldest entries past
// maxChatEntries. Callers hold r.mu.
func (r *Room) appendLocked(entry ChatEntry) ChatEntry {
	r.messages = append(r.messages, entry)
	if n := len(r.messages); n > maxChatEntries {
		r.messages = append([]ChatEntry(nil), r.messages[n-maxChatEntries:]...)
	}
	return entry
}
