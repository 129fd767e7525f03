package models

// Event names pushed over live connections.
const (
	EventReceiveMessage        = "receive_message"
	EventMessageNotification   = "message_notification"
	EventFriendRequest         = "friend_request"
	EventFriendRequestUpdate   = "friend_request_update"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventGroupInvite           = "group_invite"
	EventGroupRemoved          = "group_removed"
	EventGroupAdminSet         = "group_admin_set"
	EventGroupAdminUnset       = "group_admin_unset"
	EventProfileUpdated        = "user_profile_updated"
	EventOnlineStatus          = "online_status"
)

// Event is one named payload delivered to a client connection.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ClientFrame is an inbound frame read from a client connection.
type ClientFrame struct {
	Event   string `json:"event"`
	Room    string `json:"room,omitempty"`
	Content string `json:"content,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Inbound frame names.
const (
	FrameJoinRoom    = "join_room"
	FrameSendMessage = "send_message"
)

// MessagePayload is the denormalized delivery form of a message, shared
// by the room broadcast and the per-user notification.
type MessagePayload struct {
	Room           string `json:"room"`
	Sender         string `json:"sender"`
	SenderID       string `json:"sender_id,omitempty"`
	SenderNickname string `json:"sender_nickname,omitempty"`
	SenderAvatar   string `json:"sender_avatar,omitempty"`
	Content        string `json:"content"`
	Type           string `json:"type"`
	Timestamp      string `json:"timestamp"`
}
