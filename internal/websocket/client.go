package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// Client represents one WebSocket connection. A user may own several
// clients at once (multiple devices or tabs); delivery goes through the
// Send channel so the hub never touches the socket directly.
type Client struct {
	ID       string // Connection ID
	UserID   string
	Username string
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
}

// NewClient creates a new WebSocket client
func NewClient(connID, userID, username string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:       connID,
		UserID:   userID,
		Username: username,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan []byte, 256),
	}
}

// ReadPump handles incoming messages from the client
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.RemoveClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var incoming IncomingMessage
		if err := json.Unmarshal(message, &incoming); err != nil {
			log.Printf("Failed to parse message: %v", err)
			continue
		}

		c.handleIncomingMessage(incoming)
	}
}

// WritePump handles outgoing messages to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleIncomingMessage decodes client events and hands them to the hub's
// event handler. Malformed payloads are dropped without side effects.
func (c *Client) handleIncomingMessage(msg IncomingMessage) {
	handler := c.Hub.Handler()
	if handler == nil {
		return
	}

	switch msg.Type {
	case EventJoin:
		var payload JoinPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.Printf("Failed to parse join payload: %v", err)
			return
		}
		target, ok := payload.Target()
		if !ok {
			return
		}
		handler.HandleJoin(c, target)

	case EventSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.Printf("Failed to parse send_message payload: %v", err)
			return
		}
		target, ok := payload.Target()
		if !ok {
			return
		}
		handler.HandleSend(c, target, payload.Content)

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// SendMessage sends a message to the client
func (c *Client) SendMessage(msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
	default:
		log.Printf("Send buffer full, dropping event for connection %s", c.ID)
	}

	return nil
}
