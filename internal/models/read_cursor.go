package models

import "time"

// ReadCursor is the per-(user, room) watermark between read and unread
// messages. One row per pair, upserted on the unique index; a missing
// row means the whole room history is unread.
type ReadCursor struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UserID     string    `gorm:"not null;uniqueIndex:idx_user_room" json:"user_id"`
	Room       string    `gorm:"not null;uniqueIndex:idx_user_room" json:"room"`
	LastReadAt time.Time `gorm:"not null" json:"last_read_at"`
}
