package store

import (
	"context"
	"errors"

	"temanin/server/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist
var ErrNotFound = errors.New("record not found")

// Rel is one side's view of a pair relationship. A (user, other) pair
// holds at most one Rel per side at any time.
type Rel string

const (
	RelNone     Rel = ""
	RelFriend   Rel = "friend"
	RelIncoming Rel = "incoming"
	RelOutgoing Rel = "outgoing"
)

// UserStore looks up and maintains user records
type UserStore interface {
	UserByID(ctx context.Context, id string) (models.User, error)
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	TouchLastSeen(ctx context.Context, id string) error
}

// RelationStore persists the per-user relationship sets. Every mutation
// touches exactly one user's record: SetRelation and ClearRelation are the
// two independent writes of a pair transition and must each be idempotent,
// since the pair is not updated atomically.
type RelationStore interface {
	Relation(ctx context.Context, userID, otherID string) (Rel, error)
	RelationsOf(ctx context.Context, userID string, rel Rel) ([]string, error)
	// SetRelation upserts userID's side of the pair, replacing any
	// previous state for the same counterpart.
	SetRelation(ctx context.Context, userID, otherID string, rel Rel) error
	// ClearRelation removes userID's side only if it currently matches
	// rel; clearing an absent or different state is a no-op.
	ClearRelation(ctx context.Context, userID, otherID string, rel Rel) error
}

// MessageStore persists direct messages
type MessageStore interface {
	InsertMessage(ctx context.Context, senderID, recipientID, content string, file *models.FileMeta) (models.Message, error)
	// Conversation returns the full history between two users in
	// creation order, regardless of direction.
	Conversation(ctx context.Context, userID, otherID string) ([]models.Message, error)
	// MarkRead flips every unread message from senderID to readerID and
	// returns how many were flipped.
	MarkRead(ctx context.Context, readerID, senderID string) (int64, error)
}

// GroupStore persists groups, their membership and their message sequence
type GroupStore interface {
	CreateGroup(ctx context.Context, name, description, creatorID string, memberIDs []string) (models.Group, error)
	Group(ctx context.Context, groupID string) (models.Group, error)
	GroupsOf(ctx context.Context, userID string) ([]models.Group, error)
	UpdateGroup(ctx context.Context, groupID, name, description string) (models.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
	MemberIDs(ctx context.Context, groupID string) ([]string, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	AppendGroupMessage(ctx context.Context, groupID, senderID, content string, file *models.FileMeta) (models.GroupMessage, error)
	GroupMessages(ctx context.Context, groupID string) ([]models.GroupMessage, error)
}
