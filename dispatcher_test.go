package main

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatchJSON(d *Dispatcher, connID string, payload string) {
	d.Dispatch(connID, []byte(payload))
}

func decodeAs[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func expectError(t *testing.T, c *Client, message string) {
	t.Helper()
	typ, data := nextFrame(t, c)
	require.Equal(t, msgError, typ)
	assert.Equal(t, message, decodeAs[errorData](t, data).Message)
}

// createTestGame drives create-room for a host connection and drains the
// resulting game-created and room-list frames, returning the new room id.
func createTestGame(t *testing.T, d *Dispatcher, host *Client, name string, size int) string {
	t.Helper()
	dispatchJSON(d, host.connID, fmt.Sprintf(`{"type":"create-room","name":%q,"boardSize":%d}`, name, size))

	typ, data := nextFrame(t, host)
	require.Equal(t, msgGameCreated, typ)
	created := decodeAs[gameCreatedData](t, data)

	typ, _ = nextFrame(t, host)
	require.Equal(t, msgRoomList, typ)
	return created.RoomID
}

// Oversized board requests are clamped, not rejected.
func TestDispatcher_CreateRoomClampsBoard(t *testing.T) {
	hub, _, sessions, d := newTestHub()
	host := addTestConn(hub, "conn-host")

	dispatchJSON(d, "conn-host", `{"type":"create-room","name":"Alice","boardSize":300}`)

	typ, data := nextFrame(t, host)
	require.Equal(t, msgGameCreated, typ)
	created := decodeAs[gameCreatedData](t, data)

	assert.Equal(t, 150, created.Room.BoardSize)
	assert.Len(t, created.Room.Board, 22500)
	assert.Equal(t, statusWaiting, created.Room.Status)
	require.Len(t, created.Room.Players, 1)
	assert.True(t, created.Room.Players[0].IsHost)
	assert.Equal(t, "Alice", created.Room.HostName)

	typ, data = nextFrame(t, host)
	require.Equal(t, msgRoomList, typ)
	list := decodeAs[roomListData](t, data)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, created.RoomID, list.Entries[0].ID)

	sess, ok := sessions.Resolve("conn-host")
	require.True(t, ok)
	assert.True(t, sess.IsHost)
	assert.Equal(t, created.RoomID, sess.RoomID)
}

// Two sequential joins: second join starts the game and announces itself.
func TestDispatcher_JoinStartsGame(t *testing.T) {
	hub, _, _, d := newTestHub()
	host := addTestConn(hub, "conn-host")
	guest := addTestConn(hub, "conn-guest")
	roomID := createTestGame(t, d, host, "Alice", 50)

	// The guest's earlier room-list broadcast from create.
	typ, _ := nextFrame(t, guest)
	require.Equal(t, msgRoomList, typ)

	dispatchJSON(d, "conn-guest", fmt.Sprintf(`{"type":"join-room","roomId":%q,"name":"Bob"}`, roomID))

	for _, c := range []*Client{host, guest} {
		typ, data := nextFrame(t, c)
		require.Equal(t, msgGameJoined, typ)
		joined := decodeAs[gameJoinedData](t, data)
		assert.Equal(t, statusPlaying, joined.Room.Status)
		require.Len(t, joined.Room.Players, 2)
		assert.Equal(t, "Alice", joined.Room.Players[0].Name)
		assert.Equal(t, "Bob", joined.Room.Players[1].Name)

		typ, data = nextFrame(t, c)
		require.Equal(t, msgChatMessage, typ)
		entry := decodeAs[ChatEntry](t, data)
		assert.Equal(t, chatSystem, entry.Type)
		assert.Equal(t, "Bob joined the game", entry.Text)

		// Full room disappears from the joinable list.
		typ, data = nextFrame(t, c)
		require.Equal(t, msgRoomList, typ)
		assert.Empty(t, decodeAs[roomListData](t, data).Entries)
	}
}

func TestDispatcher_ToggleTileBroadcasts(t *testing.T) {
	hub, registry, _, d := newTestHub()
	host := addTestConn(hub, "conn-host")
	guest := addTestConn(hub, "conn-guest")
	roomID := createTestGame(t, d, host, "Alice", 20)

	nextFrame(t, guest) // room-list from create
	dispatchJSON(d, "conn-guest", fmt.Sprintf(`{"type":"join-room","roomId":%q,"name":"Bob"}`, roomID))
	for _, c := range []*Client{host, guest} {
		nextFrame(t, c) // game-joined
		nextFrame(t, c) // chat-message
		nextFrame(t, c) // room-list
	}

	dispatchJSON(d, "conn-guest", `{"type":"toggle-tile","index":5}`)

	for _, c := range []*Client{host, guest} {
		typ, data := nextFrame(t, c)
		require.Equal(t, msgTileChanged, typ)
		changed := decodeAs[tileChangedData](t, data)
		assert.Equal(t, 5, changed.Index)
		assert.Equal(t, 1, changed.NewValue)
		assert.Equal(t, "Bob", changed.Who)
	}

	room, ok := registry.Get(roomID)
	require.True(t, ok)
	assert.Equal(t, 1, room.snapshot().Board[5])
}

// Host drops from a 2-player room: remaining player is told, the room resets
// to waiting and is joinable again with one seat taken.
func TestDispatcher_HostDisconnect(t *testing.T) {
	hub, registry, _, d := newTestHub()
	host := addTestConn(hub, "conn-host")
	guest := addTestConn(hub, "conn-guest")
	roomID := createTestGame(t, d, host, "Alice", 20)

	nextFrame(t, guest)
	dispatchJSON(d, "conn-guest", fmt.Sprintf(`{"type":"join-room","roomId":%q,"name":"Bob"}`, roomID))
	for _, c := range []*Client{host, guest} {
		nextFrame(t, c)
		nextFrame(t, c)
		nextFrame(t, c)
	}

	d.HandleDisconnect("conn-host")

	typ, data := nextFrame(t, guest)
	require.Equal(t, msgChatMessage, typ)
	assert.Equal(t, "Alice disconnected", decodeAs[ChatEntry](t, data).Text)

	typ, data = nextFrame(t, guest)
	require.Equal(t, msgPlayerLeft, typ)
	left := decodeAs[playerLeftData](t, data)
	assert.Equal(t, "Alice", left.LeftPlayer)
	assert.Equal(t, reasonDisconnected, left.Reason)
	assert.Equal(t, statusWaiting, left.Room.Status)
	require.Len(t, left.Room.Players, 1)
	assert.Equal(t, "Bob", left.Room.Players[0].Name)

	typ, data = nextFrame(t, guest)
	require.Equal(t, msgRoomList, typ)
	list := decodeAs[roomListData](t, data)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, 1, list.Entries[0].PlayerCount)

	room, ok := registry.Get(roomID)
	require.True(t, ok)
	assert.True(t, room.isListable())
}

// Last player resigning deletes the room entirely.
func TestDispatcher_LastPlayerResignDeletesRoom(t *testing.T) {
	hub, registry, sessions, d := newTestHub()
	host := addTestConn(hub, "conn-host")
	roomID := createTestGame(t, d, host, "Alice", 20)

	dispatchJSON(d, "conn-host", `{"type":"resign-room"}`)

	// Only the list broadcast: there is nobody left to groupcast to.
	typ, data := nextFrame(t, host)
	require.Equal(t, msgRoomList, typ)
	assert.Empty(t, decodeAs[roomListData](t, data).Entries)

	_, ok := registry.Get(roomID)
	assert.False(t, ok)
	_, ok = sessions.Resolve("conn-host")
	assert.False(t, ok)

	dispatchJSON(d, "conn-host", `{"type":"get-rooms"}`)
	typ, data = nextFrame(t, host)
	require.Equal(t, msgRoomList, typ)
	assert.Empty(t, decodeAs[roomListData](t, data).Entries)
}

// A resign racing the transport disconnect must clean up exactly once.
func TestDispatcher_ResignThenDisconnectOnce(t *testing.T) {
	hub, _, _, d := newTestHub()
	host := addTestConn(hub, "conn-host")
	guest := addTestConn(hub, "conn-guest")
	roomID := createTestGame(t, d, host, "Alice", 20)

	nextFrame(t, guest)
	dispatchJSON(d, "conn-guest", fmt.Sprintf(`{"type":"join-room","roomId":%q,"name":"Bob"}`, roomID))
	for _, c := range []*Client{host, guest} {
		nextFrame(t, c)
		nextFrame(t, c)
		nextFrame(t, c)
	}

	dispatchJSON(d, "conn-guest", `{"type":"resign-room"}`)
	nextFrame(t, host) // chat-message
	nextFrame(t, host) // player-left
	nextFrame(t, host) // room-list
	nextFrame(t, guest)

	// The transport-level disconnect fires after the explicit resign.
	d.HandleDisconnect("conn-guest")

	assertNoFrame(t, host)
}

func TestDispatcher_JoinErrors(t *testing.T) {
	hub, _, _, d := newTestHub()
	host := addTestConn(hub, "conn-host")
	guest := addTestConn(hub, "conn-guest")
	third := addTestConn(hub, "conn-third")
	roomID := createTestGame(t, d, host, "Alice", 20)
	nextFrame(t, guest)
	nextFrame(t, third)

	dispatchJSON(d, "conn-guest", `{"type":"join-room","roomId":"game_missing","name":"Bob"}`)
	expectError(t, guest, "game not found")

	dispatchJSON(d, "conn-guest", fmt.Sprintf(`{"type":"join-room","roomId":%q,"name":"   "}`, roomID))
	expectError(t, guest, "display name required")

	dispatchJSON(d, "conn-guest", fmt.Sprintf(`{"type":"join-room","roomId":%q,"name":"Bob"}`, roomID))
	nextFrame(t, guest) // game-joined
	nextFrame(t, guest) // chat-message
	nextFrame(t, guest) // room-list
	nextFrame(t, host)
	nextFrame(t, host)
	nextFrame(t, host)
	nextFrame(t, third) // room-list broadcast

	dispatchJSON(d, "conn-third", fmt.Sprintf(`{"type":"join-room","roomId":%q,"name":"Carol"}`, roomID))
	expectError(t, third, "game is full")
}

func TestDispatcher_CreateErrors(t *testing.T) {
	hub, _, _, d := newTestHub()
	host := addTestConn(hub, "conn-host")

	dispatchJSON(d, "conn-host", `{"type":"create-room","name":"","boardSize":50}`)
	expectError(t, host, "display name required")

	createTestGame(t, d, host, "Alice", 20)

	// One game per connection.
	dispatchJSON(d, "conn-host", `{"type":"create-room","name":"Alice","boardSize":50}`)
	expectError(t, host, "already in a game")
}

func TestDispatcher_ToggleErrors(t *testing.T) {
	hub, _, _, d := newTestHub()
	host := addTestConn(hub, "conn-host")
	lurker := addTestConn(hub, "conn-lurker")

	// No session bound.
	dispatchJSON(d, "conn-lurker", `{"type":"toggle-tile","index":1}`)
	expectError(t, lurker, "not in a game")

	createTestGame(t, d, host, "Alice", 20)
	nextFrame(t, lurker) // room-list broadcast

	// Room still waiting for a second player.
	dispatchJSON(d, "conn-host", `{"type":"toggle-tile","index":1}`)
	expectError(t, host, "game is not active")
}

func TestDispatcher_ToggleOutOfRange(t *testing.T) {
	hub, _, _, d := newTestHub()
	host := addTestConn(hub, "conn-host")
	guest := addTestConn(hub, "conn-guest")
	roomID := createTestGame(t, d, host, "Alice", 20)

	nextFrame(t, guest)
	dispatchJSON(d, "conn-guest", fmt.Sprintf(`{"type":"join-room","roomId":%q,"name":"Bob"}`, roomID))
	for _, c := range []*Client{host, guest} {
		nextFrame(t, c)
		nextFrame(t, c)
		nextFrame(t, c)
	}

	dispatchJSON(d, "conn-guest", `{"type":"toggle-tile","index":400}`)
	expectError(t, guest, "tile index out of range")
	assertNoFrame(t, host)
}

func TestDispatcher_ChatRoundTrip(t *testing.T) {
	hub, _, _, d := newTestHub()
	host := addTestConn(hub, "conn-host")
	createTestGame(t, d, host, "Alice", 20)

	dispatchJSON(d, "conn-host", `{"type":"send-chat","text":"anyone there?"}`)

	typ, data := nextFrame(t, host)
	require.Equal(t, msgChatMessage, typ)
	entry := decodeAs[ChatEntry](t, data)
	assert.Equal(t, chatUser, entry.Type)
	assert.Equal(t, "Alice", entry.Author)
	assert.Equal(t, "anyone there?", entry.Text)

	// Blank chat is dropped silently.
	dispatchJSON(d, "conn-host", `{"type":"send-chat","text":"   "}`)
	assertNoFrame(t, host)
}

func TestDispatcher_IgnoresUnknownAndMalformed(t *testing.T) {
	hub, _, _, d := newTestHub()
	host := addTestConn(hub, "conn-host")

	dispatchJSON(d, "conn-host", `{"type":"warp-tile","index":1}`)
	dispatchJSON(d, "conn-host", `{not json`)

	assertNoFrame(t, host)
}
