package handlers

import (
	"errors"

	"temanin/server/internal/chat"
	"temanin/server/internal/middleware"
	"temanin/server/internal/models"
	"temanin/server/internal/store"

	"github.com/gofiber/fiber/v2"
)

// CreateGroupRequest represents create group request body
type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"memberIds"`
}

// UpdateGroupRequest represents update group request body
type UpdateGroupRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// AddMemberRequest represents add member request body
type AddMemberRequest struct {
	UserID string `json:"userId"`
}

// GroupMessageRequest represents the post-message body
type GroupMessageRequest struct {
	Content string `json:"content"`
}

// GroupHandler serves group CRUD and the group message sequence
type GroupHandler struct {
	Groups store.GroupStore
	Users  store.UserStore
	Chat   *chat.Service
}

// CreateGroup creates a new group. The creator is always a member.
func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Group name is required",
		})
	}

	if len(req.MemberIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "At least one member is required",
		})
	}

	group, err := h.Groups.CreateGroup(c.Context(), req.Name, req.Description, userID, req.MemberIDs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create group",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    group,
	})
}

// GetGroups returns all groups the current user belongs to
func (h *GroupHandler) GetGroups(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	groups, err := h.Groups.GroupsOf(c.Context(), userID)
	if err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    groups,
	})
}

// GetGroupDetails returns group details with members
func (h *GroupHandler) GetGroupDetails(c *fiber.Ctx) error {
	group, ok, err := h.loadGroup(c)
	if !ok {
		return err
	}

	memberIDs, err := h.Groups.MemberIDs(c.Context(), group.ID)
	if err != nil {
		return dbError(c)
	}
	users, err := h.Users.UsersByIDs(c.Context(), memberIDs)
	if err != nil {
		return dbError(c)
	}

	members := make([]models.UserResponse, 0, len(users))
	for i := range users {
		members = append(members, users[i].ToResponse())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": models.GroupWithMembers{
			ID:          group.ID,
			Name:        group.Name,
			Description: group.Description,
			Picture:     group.Picture,
			CreatorID:   group.CreatorID,
			Members:     members,
			CreatedAt:   group.CreatedAt,
		},
	})
}

// UpdateGroup renames a group or updates its description. Creator only.
func (h *GroupHandler) UpdateGroup(c *fiber.Ctx) error {
	group, ok, err := h.loadGroup(c)
	if !ok {
		return err
	}
	if ok, err := h.isCreator(c, group); !ok {
		return err
	}

	var req UpdateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	updated, err := h.Groups.UpdateGroup(c.Context(), group.ID, req.Name, req.Description)
	if err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    updated,
	})
}

// DeleteGroup deletes a group. Creator only.
func (h *GroupHandler) DeleteGroup(c *fiber.Ctx) error {
	group, ok, err := h.loadGroup(c)
	if !ok {
		return err
	}
	if ok, err := h.isCreator(c, group); !ok {
		return err
	}

	if err := h.Groups.DeleteGroup(c.Context(), group.ID); err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Group deleted",
	})
}

// AddGroupMember adds a member to the group. Creator only.
func (h *GroupHandler) AddGroupMember(c *fiber.Ctx) error {
	group, ok, err := h.loadGroup(c)
	if !ok {
		return err
	}
	if ok, err := h.isCreator(c, group); !ok {
		return err
	}

	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "User ID is required",
		})
	}

	if err := h.Groups.AddMember(c.Context(), group.ID, req.UserID); err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{"success": true})
}

// RemoveGroupMember removes a member from the group. Creator only; the
// creator can never be removed.
func (h *GroupHandler) RemoveGroupMember(c *fiber.Ctx) error {
	group, ok, err := h.loadGroup(c)
	if !ok {
		return err
	}
	if ok, err := h.isCreator(c, group); !ok {
		return err
	}

	memberID := c.Params("userId")
	if memberID == group.CreatorID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Cannot remove group creator",
		})
	}

	if err := h.Groups.RemoveMember(c.Context(), group.ID, memberID); err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{"success": true})
}

// LeaveGroup removes the current user from the group. The creator cannot
// leave; they must delete the group instead.
func (h *GroupHandler) LeaveGroup(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	group, ok, err := h.loadGroup(c)
	if !ok {
		return err
	}
	if group.CreatorID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Creator cannot leave. Delete group instead",
		})
	}

	if err := h.Groups.RemoveMember(c.Context(), group.ID, userID); err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetGroupMessages returns the group's message sequence. Members only.
func (h *GroupHandler) GetGroupMessages(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	group, ok, err := h.loadGroup(c)
	if !ok {
		return err
	}

	member, err := h.Groups.IsMember(c.Context(), group.ID, userID)
	if err != nil {
		return dbError(c)
	}
	if !member {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a member of this group",
		})
	}

	messages, err := h.Groups.GroupMessages(c.Context(), group.ID)
	if err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"messages": messages,
		},
	})
}

// SendGroupMessage appends a message to the group and fans it out to the
// group room, the same path as a realtime send
func (h *GroupHandler) SendGroupMessage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	group, ok, err := h.loadGroup(c)
	if !ok {
		return err
	}

	var req GroupMessageRequest
	if err := c.BodyParser(&req); err != nil || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Message content is required",
		})
	}

	message, err := h.Chat.SendGroup(c.Context(), userID, group.ID, req.Content)
	if errors.Is(err, chat.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a member of this group",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send message",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    message,
	})
}

// loadGroup fetches the group from the path parameter. When ok is false
// the second return value is the already-written error response.
func (h *GroupHandler) loadGroup(c *fiber.Ctx) (models.Group, bool, error) {
	group, err := h.Groups.Group(c.Context(), c.Params("groupId"))
	if errors.Is(err, store.ErrNotFound) {
		return models.Group{}, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Group not found",
		})
	}
	if err != nil {
		return models.Group{}, false, dbError(c)
	}
	return group, true, nil
}

// isCreator reports whether the current user created the group. When ok is
// false the error return carries the already-written Forbidden response.
func (h *GroupHandler) isCreator(c *fiber.Ctx, group models.Group) (bool, error) {
	if middleware.GetUserID(c) != group.CreatorID {
		return false, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Only the group creator can do this",
		})
	}
	return true, nil
}
