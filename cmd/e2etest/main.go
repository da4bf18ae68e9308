// E2E test: drives a full game between two WebSocket clients against a live
// server. Usage: go run ./cmd/e2etest -server ws://localhost:3000/ws
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

var serverURL = flag.String("server", "ws://localhost:3000/ws", "game server WebSocket URL")

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	// --- Connect host ---
	log.Println(">> Connecting host...")
	host, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		log.Fatal("host connect:", err)
	}
	defer host.Close()
	log.Println("   Host connected ✓")

	// --- Host creates a room ---
	log.Println(">> Host creating room (boardSize=300, expect clamp to 150)...")
	send(host, map[string]any{"type": "create-room", "name": "Host", "boardSize": 300})

	created := waitFor(host, "game-created")
	var createdData struct {
		RoomID string `json:"roomId"`
		Room   struct {
			BoardSize int   `json:"boardSize"`
			Board     []int `json:"board"`
			Status    string `json:"status"`
		} `json:"room"`
	}
	mustUnmarshal(created.Data, &createdData)
	if createdData.Room.BoardSize != 150 || len(createdData.Room.Board) != 150*150 {
		log.Fatalf("bad clamp: boardSize=%d board=%d", createdData.Room.BoardSize, len(createdData.Room.Board))
	}
	log.Printf("   Room %s created, boardSize=150 ✓", createdData.RoomID)

	// --- Connect guest, list rooms ---
	log.Println(">> Connecting guest...")
	guest, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		log.Fatal("guest connect:", err)
	}
	defer guest.Close()

	send(guest, map[string]any{"type": "get-rooms"})
	list := waitFor(guest, "room-list")
	var listData struct {
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	mustUnmarshal(list.Data, &listData)
	if len(listData.Entries) == 0 {
		log.Fatal("room list empty, expected the host's room")
	}
	log.Printf("   Guest sees %d joinable room(s) ✓", len(listData.Entries))

	// --- Guest joins ---
	log.Println(">> Guest joining...")
	send(guest, map[string]any{"type": "join-room", "roomId": createdData.RoomID, "name": "Guest"})
	joined := waitFor(guest, "game-joined")
	var joinedData struct {
		Room struct {
			Status string `json:"status"`
		} `json:"room"`
	}
	mustUnmarshal(joined.Data, &joinedData)
	if joinedData.Room.Status != "playing" {
		log.Fatalf("expected status playing after 2nd join, got %s", joinedData.Room.Status)
	}
	waitFor(host, "game-joined")
	log.Println("   Both seated, status=playing ✓")

	// --- Guest toggles a tile, host observes ---
	log.Println(">> Guest toggling tile 5...")
	send(guest, map[string]any{"type": "toggle-tile", "index": 5})
	changed := waitFor(host, "tile-changed")
	var changedData struct {
		Index    int    `json:"index"`
		NewValue int    `json:"newValue"`
		Who      string `json:"who"`
	}
	mustUnmarshal(changed.Data, &changedData)
	if changedData.Index != 5 || changedData.NewValue != 1 || changedData.Who != "Guest" {
		log.Fatalf("bad tile-changed: %+v", changedData)
	}
	log.Println("   Host observed tile-changed{5→1} ✓")

	// --- Chat round-trip ---
	log.Println(">> Host sending chat...")
	send(host, map[string]any{"type": "send-chat", "text": "good luck"})
	chat := waitFor(guest, "chat-message")
	var chatData struct {
		Author string `json:"author"`
		Text   string `json:"text"`
	}
	mustUnmarshal(chat.Data, &chatData)
	if chatData.Author != "Host" || chatData.Text != "good luck" {
		log.Fatalf("bad chat-message: %+v", chatData)
	}
	log.Println("   Guest received chat ✓")

	// --- Guest resigns, host observes ---
	log.Println(">> Guest resigning...")
	send(guest, map[string]any{"type": "resign-room"})
	left := waitFor(host, "player-left")
	var leftData struct {
		LeftPlayer string `json:"leftPlayer"`
		Reason     string `json:"reason"`
		Room       struct {
			Status string `json:"status"`
		} `json:"room"`
	}
	mustUnmarshal(left.Data, &leftData)
	if leftData.LeftPlayer != "Guest" || leftData.Reason != "resigned" || leftData.Room.Status != "waiting" {
		log.Fatalf("bad player-left: %+v", leftData)
	}
	log.Println("   Host observed player-left, room back to waiting ✓")

	fmt.Println()
	log.Println("═══════════════════════════════")
	log.Println("  E2E TEST PASSED ✓")
	log.Println("═══════════════════════════════")
	os.Exit(0)
}

func send(conn *websocket.Conn, payload map[string]any) {
	raw, _ := json.Marshal(payload)
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		log.Fatal("send:", err)
	}
}

// waitFor reads frames until one of the wanted type arrives, skipping
// interleaved broadcasts like room-list and chat system entries.
func waitFor(conn *websocket.Conn, wantType string) frame {
	deadline := time.Now().Add(5 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("waiting for %s: %v", wantType, err)
		}
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			log.Fatalf("bad frame while waiting for %s: %v", wantType, err)
		}
		if f.Type == "error" {
			log.Fatalf("server error while waiting for %s: %s", wantType, f.Data)
		}
		if f.Type == wantType {
			return f
		}
	}
}

func mustUnmarshal(raw json.RawMessage, v any) {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Fatal("unmarshal:", err)
	}
}
