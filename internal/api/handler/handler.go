package handler

import (
	"wegochat/backend/internal/chathub"
	"wegochat/backend/internal/friend"
	"wegochat/backend/internal/group"
	"wegochat/backend/internal/storage"
	"wegochat/backend/internal/unread"
)

// Handler wires the HTTP surface to the hub and the domain services.
type Handler struct {
	Hub       *chathub.ManagerService
	Messages  *chathub.MessageService
	Friends   *friend.Service
	Groups    *group.Service
	Unread    *unread.Service
	Storage   storage.Storage
	jwtSecret []byte
}

func NewHandler(hub *chathub.ManagerService, messages *chathub.MessageService,
	friends *friend.Service, groups *group.Service, unreadSvc *unread.Service,
	s storage.Storage, jwtSecret string) *Handler {
	return &Handler{
		Hub:       hub,
		Messages:  messages,
		Friends:   friends,
		Groups:    groups,
		Unread:    unreadSvc,
		Storage:   s,
		jwtSecret: []byte(jwtSecret),
	}
}
