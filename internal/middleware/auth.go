package middleware

import (
	"strings"

	"temanin/server/internal/store"
	"temanin/server/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Auth validates the session token from the cookie (or bearer header),
// loads the user record and stores the identity in the request context.
// Rejection happens before any downstream handler runs, so a failed
// websocket handshake never registers partial state.
func Auth(users store.UserStore, secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies("token")
		if tokenString == "" {
			if bearer := c.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
				tokenString = strings.TrimPrefix(bearer, "Bearer ")
			}
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Unauthorized - No token provided",
			})
		}

		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Unauthorized - Invalid token",
			})
		}

		user, err := users.UserByID(c.Context(), claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Unauthorized - Unknown user",
			})
		}

		c.Locals("userID", user.ID)
		c.Locals("username", user.Username)

		return c.Next()
	}
}

// GetUserID gets user ID from context
func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return ""
	}
	return userID
}

// GetUsername gets username from context
func GetUsername(c *fiber.Ctx) string {
	username, ok := c.Locals("username").(string)
	if !ok {
		return ""
	}
	return username
}
