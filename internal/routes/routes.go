package routes

import (
	"temanin/server/internal/handlers"
	"temanin/server/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Deps carries the constructed handlers and shared middleware
type Deps struct {
	Auth           fiber.Handler
	LimiterStorage fiber.Storage
	Friends        *handlers.FriendHandler
	Messages       *handlers.MessageHandler
	Groups         *handlers.GroupHandler
	WS             *handlers.WebSocketHandler
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api/v1")

	// Health check (public)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Temanin API is running",
		})
	})

	// Presence (protected)
	api.Get("/online-users", d.Auth, middleware.RelaxedRateLimiter(d.LimiterStorage), d.Messages.GetOnlineUsers)

	// Message routes (protected)
	messages := api.Group("/messages", d.Auth)
	messages.Get("/:userId", d.Messages.GetMessages)

	// Friend routes (protected)
	friendRL := middleware.ModerateRateLimiter(d.LimiterStorage)
	friends := api.Group("/friends", d.Auth)
	friends.Get("/", d.Friends.GetFriends)
	friends.Post("/add-friend", friendRL, d.Friends.AddFriend)
	friends.Post("/cancel-friend-request", friendRL, d.Friends.CancelFriendRequest)
	friends.Post("/accept-friend-request", friendRL, d.Friends.AcceptFriendRequest)
	friends.Post("/decline-friend-request", friendRL, d.Friends.DeclineFriendRequest)

	// Group routes (protected)
	groups := api.Group("/groups", d.Auth)
	groups.Post("/", d.Groups.CreateGroup)
	groups.Get("/", d.Groups.GetGroups)
	groups.Get("/:groupId", d.Groups.GetGroupDetails)
	groups.Put("/:groupId", d.Groups.UpdateGroup)
	groups.Delete("/:groupId", d.Groups.DeleteGroup)
	groups.Post("/:groupId/members", d.Groups.AddGroupMember)
	groups.Delete("/:groupId/members/:userId", d.Groups.RemoveGroupMember)
	groups.Post("/:groupId/leave", d.Groups.LeaveGroup)
	groups.Get("/:groupId/messages", d.Groups.GetGroupMessages)
	groups.Post("/:groupId/messages", d.Groups.SendGroupMessage)

	// WebSocket route (protected)
	api.Get("/ws", d.Auth, d.WS.Upgrade, websocket.New(d.WS.Handle))

	// WebSocket stats (protected, for debugging)
	api.Get("/ws/stats", d.Auth, d.WS.Stats)
}
