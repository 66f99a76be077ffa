package models

import "time"

// User represents a user in the system
type User struct {
	ID             string    `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email" db:"email"`
	ProfilePicture string    `json:"profilePicture" db:"profile_picture"`
	Bio            string    `json:"bio" db:"bio"`
	LastSeen       time.Time `json:"lastSeen" db:"last_seen"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// UserResponse is what we send to clients
type UserResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profilePicture"`
	Bio            string    `json:"bio"`
	LastSeen       time.Time `json:"lastSeen"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		Bio:            u.Bio,
		LastSeen:       u.LastSeen,
	}
}

// FriendLists groups the three disjoint relationship sets of a user,
// resolved to user summaries
type FriendLists struct {
	Friends          []UserResponse `json:"friends"`
	IncomingRequests []UserResponse `json:"incomingRequests"`
	OutgoingRequests []UserResponse `json:"outgoingRequests"`
}
