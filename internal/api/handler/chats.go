package handler

import (
	"net/http"
	"sort"
	"time"

	"wegochat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// chatListItem is one row of the recent-chats screen.
type chatListItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar"`
	LastMessage string    `json:"last_message"`
	Time        time.Time `json:"time"`
}

// ListChats returns the caller's conversations (groups and direct
// chats), newest activity first.
func (h *Handler) ListChats(c *gin.Context) {
	userID := MustUserID(c)

	groups, err := h.Storage.GetGroupsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	user, err := h.Storage.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	friends, err := h.Storage.GetUsersByIDs(user.Friends)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	items := make([]chatListItem, 0, len(groups)+len(friends))

	for _, g := range groups {
		item := chatListItem{ID: g.ID, Type: "group", Name: g.Name, Avatar: g.Avatar, Time: g.CreatedAt}
		if last, err := h.Storage.GetLastMessage(g.ID); err == nil && last != nil {
			item.LastMessage = previewOf(last)
			item.Time = last.CreatedAt
		}
		items = append(items, item)
	}

	for _, f := range friends {
		room := models.DirectRoomKey(userID, f.ID)
		item := chatListItem{ID: f.ID, Type: "dm", Name: f.DisplayName(), Avatar: f.Avatar}
		if last, err := h.Storage.GetLastMessage(room); err == nil && last != nil {
			item.LastMessage = previewOf(last)
			item.Time = last.CreatedAt
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Time.After(items[j].Time) })
	c.JSON(http.StatusOK, items)
}

func previewOf(msg *models.Message) string {
	if msg.Type == models.MessageImage {
		return "[image]"
	}
	return msg.Content
}

// GetHistory returns a room's messages in creation order, denormalized
// with sender display fields.
func (h *Handler) GetHistory(c *gin.Context) {
	room := c.Param("roomId")
	messages, err := h.Storage.GetRoomHistory(room)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	senderIDs := make([]string, 0, len(messages))
	seen := map[string]struct{}{}
	for _, m := range messages {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	senders, err := h.Storage.GetUsersByIDs(senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	byID := make(map[string]models.User, len(senders))
	for _, u := range senders {
		byID[u.ID] = u
	}

	payload := make([]models.MessagePayload, 0, len(messages))
	for _, m := range messages {
		p := models.MessagePayload{
			Room:      m.Room,
			Sender:    m.SenderID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			Type:      m.Type,
			Timestamp: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		if u, ok := byID[m.SenderID]; ok {
			p.Sender = u.Username
			p.SenderNickname = u.Nickname
			p.SenderAvatar = u.Avatar
		}
		payload = append(payload, p)
	}
	c.JSON(http.StatusOK, payload)
}

// GetUnread returns the caller's unread counts per room; rooms with
// nothing unread are omitted.
func (h *Handler) GetUnread(c *gin.Context) {
	counts, err := h.Unread.UnreadCounts(MustUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// MarkRead advances the caller's read cursor for the room to now.
func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.Unread.MarkRead(MustUserID(c), c.Param("roomId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
