package handlers

import (
	ws "temanin/server/internal/websocket"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// WebSocketHandler upgrades authenticated requests and runs the
// per-connection pumps. The auth middleware rejects before the upgrade, so
// a failed handshake never touches the registry.
type WebSocketHandler struct {
	Hub *ws.Hub
}

// Upgrade checks if the request should be upgraded to WebSocket
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}

	return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
		"success": false,
		"error":   "WebSocket upgrade required",
	})
}

// Handle runs one realtime connection from registration to teardown
func (h *WebSocketHandler) Handle(c *websocket.Conn) {
	userID := c.Locals("userID").(string)
	username := c.Locals("username").(string)

	client := ws.NewClient(uuid.NewString(), userID, username, c, h.Hub)
	h.Hub.AddClient(client)

	go client.WritePump()
	client.ReadPump() // Blocks until the connection closes
}

// Stats returns registry statistics for debugging
func (h *WebSocketHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"onlineUsers": h.Hub.OnlineCount(),
			"userIds":     h.Hub.OnlineUsers(),
		},
	})
}
