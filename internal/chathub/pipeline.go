package chathub

import (
	"errors"
	"fmt"
	"log"
	"time"

	"wegochat/backend/internal/models"
	"wegochat/backend/internal/storage"
)

var (
	// ErrInvalidMessage rejects a submission before any side effect.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrNotPersisted marks the degraded path: the message was delivered
	// to live connections but could not be stored.
	ErrNotPersisted = errors.New("message not persisted")
)

// MessageSender is the submit contract consumed by connections and by
// the friend and group services for their system messages.
type MessageSender interface {
	Submit(senderID, room, content, kind string) (*models.Message, error)
}

// Broadcaster is the slice of the registry the pipeline fans out
// through.
type Broadcaster interface {
	BroadcastToRoom(room string, ev models.Event)
	NotifyUser(userID string, ev models.Event)
}

// MessageService is the message pipeline: validate, persist with a
// server-assigned timestamp, broadcast to the room, then notify every
// addressed participant who may not be watching the room.
type MessageService struct {
	Hub     Broadcaster
	Storage storage.Storage
}

func NewMessageService(hub Broadcaster, s storage.Storage) *MessageService {
	return &MessageService{Hub: hub, Storage: s}
}

// Submit runs the full pipeline. On a storage failure the message is
// still broadcast best-effort and the error is returned alongside the
// unpersisted message; delivery is prioritized over strict durability in
// the live path, but the failure is never silent.
func (p *MessageService) Submit(senderID, room, content, kind string) (*models.Message, error) {
	if room == "" || content == "" {
		return nil, fmt.Errorf("%w: empty room or content", ErrInvalidMessage)
	}
	switch kind {
	case "":
		kind = models.MessageText
	case models.MessageText, models.MessageImage, models.MessageSystem:
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, kind)
	}

	payload := models.MessagePayload{
		Room:     room,
		Sender:   senderID,
		SenderID: senderID,
		Content:  content,
		Type:     kind,
	}
	if sender, err := p.Storage.GetUserByID(senderID); err == nil {
		payload.Sender = sender.Username
		payload.SenderNickname = sender.Nickname
		payload.SenderAvatar = sender.Avatar
	} else {
		log.Printf("WARNING: Failed to resolve sender %s: %v", senderID, err)
	}

	msg := &models.Message{
		Room:     room,
		SenderID: senderID,
		Content:  content,
		Type:     kind,
	}
	persistErr := p.Storage.SaveMessage(msg)
	if persistErr != nil {
		log.Printf("WARNING: Message for room %s not persisted, broadcasting anyway: %v", room, persistErr)
		msg.CreatedAt = time.Now()
	}
	payload.Timestamp = msg.CreatedAt.UTC().Format(time.RFC3339Nano)

	p.Hub.BroadcastToRoom(room, models.Event{Event: models.EventReceiveMessage, Data: payload})
	p.notifyRecipients(senderID, room, payload)

	if persistErr != nil {
		return msg, fmt.Errorf("%w: %v", ErrNotPersisted, persistErr)
	}
	return msg, nil
}

// notifyRecipients resolves everyone the conversation addresses and
// pushes a notification to each, excluding the sender. Recipients who
// are joined to the room also receive this; the client suppresses the
// duplicate when it is actively viewing the room.
func (p *MessageService) notifyRecipients(senderID, room string, payload models.MessagePayload) {
	var recipients []string
	if ids, ok := models.DirectRoomParticipants(room); ok {
		recipients = ids
	} else {
		group, err := p.Storage.GetGroupByID(room)
		if err != nil {
			log.Printf("WARNING: Failed to resolve recipients for room %s: %v", room, err)
			return
		}
		recipients = group.Members
	}

	ev := models.Event{Event: models.EventMessageNotification, Data: payload}
	for _, id := range recipients {
		if id == senderID {
			continue
		}
		p.Hub.NotifyUser(id, ev)
	}
}
