package models

import "time"

// FileMeta describes an optional file attachment on a message
type FileMeta struct {
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	FileType     string `json:"fileType"`
	FileSize     int64  `json:"fileSize"`
	URL          string `json:"url"`
}

// Message represents a direct message between two users.
// Immutable once written except for the read flag, which only the
// recipient's read path flips.
type Message struct {
	ID          string    `json:"id" db:"id"`
	SenderID    string    `json:"from" db:"sender_id"`
	RecipientID string    `json:"to" db:"recipient_id"`
	Content     string    `json:"content" db:"content"`
	Read        bool      `json:"read" db:"read"`
	File        *FileMeta `json:"file,omitempty"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
