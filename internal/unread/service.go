// Package unread is the read-cursor engine: it maintains the
// per-(user, room) watermark and computes unread counts on demand.
// Counts are a pull-based aggregate over the message table, not a
// maintained counter, so there is no counter drift to reconcile.
package unread

import (
	"time"

	"wegochat/backend/internal/models"
)

// Store is the slice of storage the engine needs.
type Store interface {
	GetUserByID(id string) (*models.User, error)
	GetGroupsForUser(userID string) ([]models.Group, error)
	GetReadCursor(userID, room string) (*models.ReadCursor, error)
	CountMessagesSince(room string, since time.Time) (int64, error)
	UpsertReadCursor(userID, room string, at time.Time) error
}

type Service struct {
	Storage Store
}

func NewService(s Store) *Service {
	return &Service{Storage: s}
}

// MarkRead advances the user's cursor for the room to now.
func (s *Service) MarkRead(userID, room string) error {
	return s.Storage.UpsertReadCursor(userID, room, time.Now())
}

// UnreadCounts returns, for every room the user belongs to (each group
// plus a derived direct room per friend), the number of messages newer
// than the stored cursor. A missing cursor counts from the beginning of
// time; rooms with nothing unread are omitted.
func (s *Service) UnreadCounts(userID string) (map[string]int64, error) {
	user, err := s.Storage.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.Storage.GetGroupsForUser(userID)
	if err != nil {
		return nil, err
	}

	rooms := make([]string, 0, len(groups)+len(user.Friends))
	for _, g := range groups {
		rooms = append(rooms, g.ID)
	}
	for _, friendID := range user.Friends {
		rooms = append(rooms, models.DirectRoomKey(userID, friendID))
	}

	counts := make(map[string]int64)
	for _, room := range rooms {
		var since time.Time
		cursor, err := s.Storage.GetReadCursor(userID, room)
		if err != nil {
			return nil, err
		}
		if cursor != nil {
			since = cursor.LastReadAt
		}

		count, err := s.Storage.CountMessagesSince(room, since)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			counts[room] = count
		}
	}
	return counts, nil
}
