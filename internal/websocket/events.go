package websocket

import (
	"encoding/json"
	"time"

	"temanin/server/internal/models"
)

// EventType represents different WebSocket event types
type EventType string

const (
	// Client events
	EventJoin        EventType = "join"
	EventSendMessage EventType = "send_message"

	// Server events
	EventUserStatusChange EventType = "user_status_change"
	EventNewMessage       EventType = "new_message"
	EventGroupMessage     EventType = "group_message"
	EventMessagesRead     EventType = "messages_read"
	EventError            EventType = "error"
)

// Presence status values carried by user_status_change
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// WSMessage represents a WebSocket message structure
type WSMessage struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// IncomingMessage represents messages received from clients
type IncomingMessage struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// TargetKind discriminates conversation targets
type TargetKind int

const (
	TargetDirect TargetKind = iota
	TargetGroup
)

// Target identifies a conversation: either a direct counterpart user or a
// group. Decoded once at the wire boundary so downstream fan-out logic can
// switch exhaustively instead of branching on a raw flag.
type Target struct {
	Kind TargetKind
	ID   string
}

// JoinPayload is the join event payload; exactly one field is set
type JoinPayload struct {
	OtherUserID string `json:"otherUserId,omitempty"`
	GroupID     string `json:"groupId,omitempty"`
}

// Target converts the payload to a tagged target. ok is false for
// malformed payloads (neither or both fields set).
func (p JoinPayload) Target() (Target, bool) {
	switch {
	case p.OtherUserID != "" && p.GroupID == "":
		return Target{Kind: TargetDirect, ID: p.OtherUserID}, true
	case p.GroupID != "" && p.OtherUserID == "":
		return Target{Kind: TargetGroup, ID: p.GroupID}, true
	}
	return Target{}, false
}

// SendMessagePayload is the send_message event payload
type SendMessagePayload struct {
	To      string `json:"to"`
	Content string `json:"content"`
	IsGroup bool   `json:"isGroup"`
}

// Target converts the payload to a tagged target. ok is false when the
// target or content is missing.
func (p SendMessagePayload) Target() (Target, bool) {
	if p.To == "" || p.Content == "" {
		return Target{}, false
	}
	if p.IsGroup {
		return Target{Kind: TargetGroup, ID: p.To}, true
	}
	return Target{Kind: TargetDirect, ID: p.To}, true
}

// StatusPayload represents user presence payload
type StatusPayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// GroupMessagePayload represents group message delivery payload
type GroupMessagePayload struct {
	GroupID string                        `json:"groupId"`
	Message models.GroupMessageWithSender `json:"message"`
}

// MessagesReadPayload notifies a sender that the counterpart has read
// previously-unread messages
type MessagesReadPayload struct {
	ReaderID         string `json:"readerId"`
	ConversationWith string `json:"conversationWith"`
	Count            int64  `json:"count"`
}

// ErrorPayload represents error event payload
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
