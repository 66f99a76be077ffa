package handlers

import (
	"errors"

	"temanin/server/internal/friends"
	"temanin/server/internal/middleware"
	"temanin/server/internal/models"
	"temanin/server/internal/store"

	"github.com/gofiber/fiber/v2"
)

// FriendRequestBody is the body shared by all friend-request endpoints
type FriendRequestBody struct {
	UserID string `json:"userId"`
}

// FriendHandler exposes the relationship state machine over HTTP
type FriendHandler struct {
	Friends *friends.Service
	Store   store.RelationStore
	Users   store.UserStore
}

// AddFriend sends a friend request to another user
func (h *FriendHandler) AddFriend(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req FriendRequestBody
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User ID is required",
		})
	}

	if _, err := h.Users.UserByID(c.Context(), req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "User not found",
			})
		}
		return dbError(c)
	}

	err := h.Friends.SendRequest(c.Context(), userID, req.UserID)
	switch {
	case errors.Is(err, friends.ErrSelfRequest):
		return c.JSON(fiber.Map{"success": false, "message": "Cannot send friend request to yourself"})
	case errors.Is(err, friends.ErrAlreadyFriends):
		return c.JSON(fiber.Map{"success": false, "message": "Already friends"})
	case errors.Is(err, friends.ErrRequestPending):
		return c.JSON(fiber.Map{"success": false, "message": "Friend request already sent"})
	case errors.Is(err, friends.ErrCounterpartPending):
		return c.JSON(fiber.Map{"success": false, "message": "This user already sent you a friend request"})
	case err != nil:
		return dbError(c)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Friend request sent"})
}

// CancelFriendRequest withdraws a previously sent request
func (h *FriendHandler) CancelFriendRequest(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req FriendRequestBody
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User ID is required",
		})
	}

	if err := h.Friends.CancelRequest(c.Context(), userID, req.UserID); err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Friend request cancelled"})
}

// AcceptFriendRequest accepts a pending incoming request. The body carries
// the id of the user who sent the original request.
func (h *FriendHandler) AcceptFriendRequest(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req FriendRequestBody
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User ID is required",
		})
	}

	// Accepting is only authorized while the request is pending; the
	// transition itself stays unconditional so retries converge.
	rel, err := h.Store.Relation(c.Context(), userID, req.UserID)
	if err != nil {
		return dbError(c)
	}
	if rel != store.RelIncoming && rel != store.RelFriend {
		return c.JSON(fiber.Map{"success": false, "message": "No pending friend request from this user"})
	}

	if err := h.Friends.AcceptRequest(c.Context(), req.UserID, userID); err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Friend request accepted"})
}

// DeclineFriendRequest removes a pending incoming request without adding a
// friendship
func (h *FriendHandler) DeclineFriendRequest(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req FriendRequestBody
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User ID is required",
		})
	}

	if err := h.Friends.DeclineRequest(c.Context(), req.UserID, userID); err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Friend request declined"})
}

// GetFriends returns the current user's three relationship sets resolved
// to user summaries
func (h *FriendHandler) GetFriends(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	lists := models.FriendLists{
		Friends:          []models.UserResponse{},
		IncomingRequests: []models.UserResponse{},
		OutgoingRequests: []models.UserResponse{},
	}

	for _, set := range []struct {
		rel  store.Rel
		dest *[]models.UserResponse
	}{
		{store.RelFriend, &lists.Friends},
		{store.RelIncoming, &lists.IncomingRequests},
		{store.RelOutgoing, &lists.OutgoingRequests},
	} {
		ids, err := h.Store.RelationsOf(c.Context(), userID, set.rel)
		if err != nil {
			return dbError(c)
		}
		users, err := h.Users.UsersByIDs(c.Context(), ids)
		if err != nil {
			return dbError(c)
		}
		for i := range users {
			*set.dest = append(*set.dest, users[i].ToResponse())
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": lists})
}

func dbError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "Database error",
	})
}
