// Package friend implements the friend request lifecycle:
// pending -> accepted or pending -> rejected, with the mutual friend
// edge applied on acceptance.
package friend

import (
	"errors"
	"fmt"
	"log"
	"time"

	"wegochat/backend/internal/models"
)

var (
	ErrSelfRequest    = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends = errors.New("already friends")
	ErrRequestPending = errors.New("friend request already pending")
	ErrNotRecipient   = errors.New("not the recipient of this request")
	ErrResolved       = errors.New("friend request already resolved")
	ErrBadStatus      = errors.New("invalid resolution status")
)

// Store is the slice of storage the service needs.
type Store interface {
	GetUserByID(id string) (*models.User, error)
	GetUsersByIDs(ids []string) ([]models.User, error)
	CreateFriendRequest(req *models.FriendRequest) error
	GetPendingRequest(fromID, toID string) (*models.FriendRequest, error)
	GetPendingRequestsFor(userID string) ([]models.FriendRequest, error)
	GetFriendRequestByID(id uint) (*models.FriendRequest, error)
	UpdateFriendRequestStatus(id uint, status string) error
	AddFriendEdge(userID, friendID string) error
	IsUserOnline(userID string) (bool, error)
}

// Notifier delivers out-of-room events to a user's live connections.
type Notifier interface {
	NotifyUser(userID string, ev models.Event)
}

type Service struct {
	Storage Store
	Hub     Notifier
}

func NewService(s Store, hub Notifier) *Service {
	return &Service{Storage: s, Hub: hub}
}

// RequestPayload is the friend_request event body: the requester's
// profile snippet plus their remark.
type RequestPayload struct {
	ID        uint           `json:"id"`
	From      models.Profile `json:"from"`
	Remark    string         `json:"remark"`
	CreatedAt string         `json:"created_at"`
}

// PendingRequest is a pending request joined with its sender's profile.
type PendingRequest struct {
	models.FriendRequest
	From models.Profile `json:"from"`
}

// Send creates a pending request from fromID to toID. Self-requests,
// existing friendships and duplicate pending requests are each rejected
// with a distinct error before any state change.
func (s *Service) Send(fromID, toID, remark string) (*models.FriendRequest, error) {
	if fromID == toID {
		return nil, ErrSelfRequest
	}

	from, err := s.Storage.GetUserByID(fromID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Storage.GetUserByID(toID); err != nil {
		return nil, err
	}
	if from.HasFriend(toID) {
		return nil, ErrAlreadyFriends
	}

	existing, err := s.Storage.GetPendingRequest(fromID, toID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRequestPending
	}

	req := &models.FriendRequest{FromID: fromID, ToID: toID, Remark: remark}
	if err := s.Storage.CreateFriendRequest(req); err != nil {
		return nil, err
	}

	s.Hub.NotifyUser(toID, models.Event{
		Event: models.EventFriendRequest,
		Data: RequestPayload{
			ID:        req.ID,
			From:      from.Profile(),
			Remark:    remark,
			CreatedAt: req.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	return req, nil
}

// Pending lists the pending requests addressed to the user, newest last,
// with sender profiles resolved for display.
func (s *Service) Pending(userID string) ([]PendingRequest, error) {
	requests, err := s.Storage.GetPendingRequestsFor(userID)
	if err != nil {
		return nil, err
	}

	senderIDs := make([]string, 0, len(requests))
	for _, r := range requests {
		senderIDs = append(senderIDs, r.FromID)
	}
	senders, err := s.Storage.GetUsersByIDs(senderIDs)
	if err != nil {
		return nil, err
	}
	profiles := make(map[string]models.Profile, len(senders))
	for _, u := range senders {
		profiles[u.ID] = u.Profile()
	}

	result := make([]PendingRequest, 0, len(requests))
	for _, r := range requests {
		result = append(result, PendingRequest{FriendRequest: r, From: profiles[r.FromID]})
	}
	return result, nil
}

// Resolve moves a pending request to a terminal state. Only the
// recipient may resolve it, and a terminal request stays terminal. On
// acceptance both users gain the friend edge; the requester is notified
// only then, so a rejection never reaches them.
func (s *Service) Resolve(requestID uint, actorID, status string) error {
	if status != models.RequestAccepted && status != models.RequestRejected {
		return ErrBadStatus
	}

	req, err := s.Storage.GetFriendRequestByID(requestID)
	if err != nil {
		return err
	}
	if req.ToID != actorID {
		return ErrNotRecipient
	}
	if req.Resolved() {
		return ErrResolved
	}

	if err := s.Storage.UpdateFriendRequestStatus(req.ID, status); err != nil {
		return err
	}

	if status == models.RequestAccepted {
		if err := s.Storage.AddFriendEdge(req.FromID, req.ToID); err != nil {
			return fmt.Errorf("adding friend edge %s -> %s: %w", req.FromID, req.ToID, err)
		}
		if err := s.Storage.AddFriendEdge(req.ToID, req.FromID); err != nil {
			// Half-applied edge: the graph is asymmetric until repaired.
			log.Printf("ERROR: Friend edge %s <-> %s only applied one way: %v", req.FromID, req.ToID, err)
			return fmt.Errorf("friend edge half-applied for %s <-> %s: %w", req.FromID, req.ToID, err)
		}
	}

	// The recipient's other devices learn the request is gone either way.
	s.Hub.NotifyUser(req.ToID, models.Event{
		Event: models.EventFriendRequestUpdate,
		Data:  map[string]interface{}{"id": req.ID, "status": status},
	})

	if status == models.RequestAccepted {
		if toUser, err := s.Storage.GetUserByID(req.ToID); err == nil {
			s.Hub.NotifyUser(req.FromID, models.Event{
				Event: models.EventFriendRequestAccepted,
				Data: map[string]interface{}{
					"user":       toUser.Profile(),
					"created_at": time.Now().UTC().Format(time.RFC3339Nano),
				},
			})
		} else {
			log.Printf("WARNING: Failed to load user %s for acceptance event: %v", req.ToID, err)
		}
	}
	return nil
}

// Friends returns the user's friend profiles decorated with live
// presence.
func (s *Service) Friends(userID string) ([]models.Profile, error) {
	user, err := s.Storage.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.Storage.GetUsersByIDs(user.Friends)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(friends))
	for _, f := range friends {
		p := f.Profile()
		online, err := s.Storage.IsUserOnline(f.ID)
		if err != nil {
			log.Printf("WARNING: Failed to check presence of %s: %v", f.ID, err)
		}
		p.Online = online
		profiles = append(profiles, p)
	}
	return profiles, nil
}
