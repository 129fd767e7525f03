package models

import "time"

// Friend request lifecycle. A request transitions from pending to
// exactly one terminal state and is then kept as history.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FriendRequest records one attempt by FromID to befriend ToID.
type FriendRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FromID    string    `gorm:"not null;index:idx_req_pair" json:"from_id"`
	ToID      string    `gorm:"not null;index:idx_req_pair" json:"to_id"`
	Remark    string    `json:"remark"`
	Status    string    `gorm:"not null;default:pending" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Resolved reports whether the request reached a terminal state.
func (r *FriendRequest) Resolved() bool {
	return r.Status != RequestPending
}
