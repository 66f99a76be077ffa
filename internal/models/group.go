package models

import "time"

// Group represents a chat group
type Group struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Picture     string    `json:"picture" db:"picture"`
	CreatorID   string    `json:"creatorId" db:"creator_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// GroupWithMembers includes member information
type GroupWithMembers struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Picture     string         `json:"picture"`
	CreatorID   string         `json:"creatorId"`
	Members     []UserResponse `json:"members"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// GroupMessage represents one entry in a group's message sequence
type GroupMessage struct {
	ID        string    `json:"id" db:"id"`
	GroupID   string    `json:"groupId" db:"group_id"`
	SenderID  string    `json:"senderId" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	File      *FileMeta `json:"file,omitempty"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// GroupMessageWithSender includes the sender's display attributes
type GroupMessageWithSender struct {
	ID        string       `json:"id"`
	GroupID   string       `json:"groupId"`
	Sender    UserResponse `json:"sender"`
	Content   string       `json:"content"`
	File      *FileMeta    `json:"file,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
