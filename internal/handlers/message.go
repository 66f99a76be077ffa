package handlers

import (
	"temanin/server/internal/chat"
	"temanin/server/internal/middleware"
	ws "temanin/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler serves conversation history and the online-user set
type MessageHandler struct {
	Chat *chat.Service
	Hub  *ws.Hub
}

// GetMessages returns the conversation with another user. Fetching history
// takes the same read-receipt path as joining the room: unread messages
// from the counterpart are flipped and their live connections notified.
func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	otherID := c.Params("userId")

	if otherID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "User ID is required",
		})
	}

	messages, err := h.Chat.History(c.Context(), userID, otherID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch messages",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"messages": messages,
		},
	})
}

// GetOnlineUsers returns the ids of all users with at least one live
// connection
func (h *MessageHandler) GetOnlineUsers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"userIds": h.Hub.OnlineUsers(),
		},
	})
}
