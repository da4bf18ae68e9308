package main

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// Client is one WebSocket connection. The read pump feeds frames to the
// dispatcher in arrival order; the write pump drains the send buffer. The
// hub is the only writer to send.
type Client struct {
	hub        *Hub
	dispatcher *Dispatcher
	conn       *websocket.Conn
	connID     string
	ip         string
	send       chan []byte

	closeOnce sync.Once
}

func NewClient(hub *Hub, dispatcher *Dispatcher, conn *websocket.Conn, ip string) *Client {
	return &Client{
		hub:        hub,
		dispatcher: dispatcher,
		conn:       conn,
		connID:     uuid.NewString(),
		ip:         ip,
		send:       make(chan []byte, sendBufferSize),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read error conn=%s: %v", shortID(c.connID), err)
			}
			return
		}
		c.dispatcher.Dispatch(c.connID, message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue queues a frame for the write pump. A client whose buffer is full
// is falling behind; the frame is dropped rather than blocking the sender.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
