package models

import "time"

// Message kinds. System messages are produced by the friend and group
// services and stored exactly like user messages so history stays
// continuous.
const (
	MessageText   = "text"
	MessageImage  = "image"
	MessageSystem = "system"
)

// Message is one persisted chat message. Rows are append-only per room
// and ordered by CreatedAt, which is always assigned by the server.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Room      string    `gorm:"not null;index:idx_room_created" json:"room"`
	SenderID  string    `gorm:"index" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Type      string    `gorm:"not null" json:"type"`
	CreatedAt time.Time `gorm:"index:idx_room_created" json:"created_at"`
}
