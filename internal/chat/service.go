// Package chat implements message fan-out and read-receipt propagation on
// top of the connection hub and the persistence stores.
package chat

import (
	"context"
	"errors"
	"log"
	"time"

	"temanin/server/internal/models"
	"temanin/server/internal/store"
	ws "temanin/server/internal/websocket"
)

// ErrForbidden is returned when a non-member sends to a group
var ErrForbidden = errors.New("not a member of this group")

// Service wires persistence and delivery. Persistence always precedes
// emission: a delivered message is guaranteed durable. Persistence
// failures are logged and the message is dropped — at most one attempt, no
// durability retry.
type Service struct {
	users    store.UserStore
	messages store.MessageStore
	groups   store.GroupStore
	hub      *ws.Hub
}

func NewService(users store.UserStore, messages store.MessageStore, groups store.GroupStore, hub *ws.Hub) *Service {
	return &Service{users: users, messages: messages, groups: groups, hub: hub}
}

// HandleJoin subscribes a connection to the target conversation's room.
// Joining a direct room also syncs read receipts for messages from that
// counterpart.
func (s *Service) HandleJoin(c *ws.Client, target ws.Target) {
	ctx := context.Background()

	switch target.Kind {
	case ws.TargetDirect:
		s.hub.JoinRoom(c, ws.DirectRoomID(c.UserID, target.ID))
		if _, err := s.SyncReadReceipts(ctx, c.UserID, target.ID); err != nil {
			log.Printf("Failed to sync read receipts: %v", err)
		}

	case ws.TargetGroup:
		member, err := s.groups.IsMember(ctx, target.ID, c.UserID)
		if err != nil {
			log.Printf("Failed to check group membership: %v", err)
			return
		}
		if !member {
			return
		}
		s.hub.JoinRoom(c, ws.GroupRoomID(target.ID))
	}
}

// HandleSend persists and fans out a message sent over the realtime
// connection. Errors surface to the sender as an error event only; no
// partial state is left behind.
func (s *Service) HandleSend(c *ws.Client, target ws.Target, content string) {
	ctx := context.Background()

	switch target.Kind {
	case ws.TargetDirect:
		if _, err := s.SendDirect(ctx, c.UserID, target.ID, content); err != nil {
			log.Printf("Failed to send direct message: %v", err)
		}

	case ws.TargetGroup:
		_, err := s.SendGroup(ctx, c.UserID, target.ID, content)
		if errors.Is(err, ErrForbidden) {
			c.SendMessage(ws.WSMessage{
				Type:      ws.EventError,
				Payload:   ws.ErrorPayload{Code: "forbidden", Message: "You are not a member of this group"},
				Timestamp: time.Now(),
			})
			return
		}
		if err != nil {
			log.Printf("Failed to send group message: %v", err)
		}
	}
}

// SendDirect persists a direct message and delivers it to the canonical
// room for the (sender, recipient) pair
func (s *Service) SendDirect(ctx context.Context, senderID, recipientID, content string) (models.Message, error) {
	message, err := s.messages.InsertMessage(ctx, senderID, recipientID, content, nil)
	if err != nil {
		return models.Message{}, err
	}

	s.hub.SendToRoom(ws.DirectRoomID(senderID, recipientID), ws.WSMessage{
		Type:      ws.EventNewMessage,
		Payload:   message,
		Timestamp: time.Now(),
	})
	return message, nil
}

// SendGroup verifies membership, appends to the group's message sequence
// and delivers to the group room with the sender's display attributes
// resolved
func (s *Service) SendGroup(ctx context.Context, senderID, groupID, content string) (models.GroupMessageWithSender, error) {
	member, err := s.groups.IsMember(ctx, groupID, senderID)
	if err != nil {
		return models.GroupMessageWithSender{}, err
	}
	if !member {
		return models.GroupMessageWithSender{}, ErrForbidden
	}

	message, err := s.groups.AppendGroupMessage(ctx, groupID, senderID, content, nil)
	if err != nil {
		return models.GroupMessageWithSender{}, err
	}

	sender, err := s.users.UserByID(ctx, senderID)
	if err != nil {
		return models.GroupMessageWithSender{}, err
	}

	resolved := models.GroupMessageWithSender{
		ID:        message.ID,
		GroupID:   message.GroupID,
		Sender:    sender.ToResponse(),
		Content:   message.Content,
		File:      message.File,
		CreatedAt: message.CreatedAt,
	}

	s.hub.SendToRoom(ws.GroupRoomID(groupID), ws.WSMessage{
		Type:      ws.EventGroupMessage,
		Payload:   ws.GroupMessagePayload{GroupID: groupID, Message: resolved},
		Timestamp: time.Now(),
	})
	return resolved, nil
}

// SyncReadReceipts flips every unread message from otherID to readerID,
// then notifies all of otherID's live connections so every open device can
// clear its unread badge without re-polling. Returns how many messages
// were flipped.
func (s *Service) SyncReadReceipts(ctx context.Context, readerID, otherID string) (int64, error) {
	count, err := s.messages.MarkRead(ctx, readerID, otherID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	s.hub.SendToUser(otherID, ws.WSMessage{
		Type: ws.EventMessagesRead,
		Payload: ws.MessagesReadPayload{
			ReaderID:         readerID,
			ConversationWith: otherID,
			Count:            count,
		},
		Timestamp: time.Now(),
	})
	return count, nil
}

// History returns the conversation between two users after syncing read
// receipts — the explicit history fetch takes the same read path as a room
// join.
func (s *Service) History(ctx context.Context, userID, otherID string) ([]models.Message, error) {
	if _, err := s.SyncReadReceipts(ctx, userID, otherID); err != nil {
		return nil, err
	}
	return s.messages.Conversation(ctx, userID, otherID)
}
