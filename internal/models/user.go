package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User is a registered account. Friends holds the ids of confirmed
// friends; the edge is mutual, so an id appears in both users' arrays
// or in neither.
type User struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Nickname     string         `json:"nickname"`
	Bio          string         `json:"bio"`
	Avatar       string         `json:"avatar"`
	Friends      pq.StringArray `gorm:"type:text[]" json:"friends"`
	CreatedAt    time.Time      `json:"created_at"`
}

// BeforeCreate generates a UUID for the user if the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// Profile is the public projection of a user, denormalized into
// delivery payloads and API responses.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio,omitempty"`
	Online   bool   `json:"online,omitempty"`
}

// Profile returns the public view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Nickname: u.Nickname,
		Avatar:   u.Avatar,
		Bio:      u.Bio,
	}
}

// DisplayName returns the nickname when set, otherwise the username.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// HasFriend reports whether id is already in the user's friend set.
func (u *User) HasFriend(id string) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}
