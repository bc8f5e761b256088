package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans out lightweight change notifications to every client watching
// a game. Clients re-fetch the game document when nudged; the hub never
// carries authoritative state.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

type Client struct {
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte
	gameID string
}

type Notification struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
		}
	}
}

// NotifyGame broadcasts an event to every client watching gameID.
func (h *Hub) NotifyGame(gameID, eventType string, payload interface{}) {
	data, err := json.Marshal(Notification{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("hub: marshal %s notification: %v", eventType, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		if client.gameID != gameID {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop it and let the client reconnect.
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, gameID string) *Client {
	client := &Client{
		hub:    h,
		socket: conn,
		send:   make(chan []byte, 256),
		gameID: gameID,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		// Incoming frames are ignored; the socket is notify-only.
		if _, _, err := c.socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("hub: read error: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}
