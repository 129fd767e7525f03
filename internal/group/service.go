// Package group implements group membership and the role authority
// model: owner > admin > member, with every successful mutation emitting
// a durable system message into the group's room plus targeted events to
// the affected users.
package group

import (
	"errors"
	"log"
	"strings"
	"time"

	"wegochat/backend/internal/chathub"
	"wegochat/backend/internal/models"
)

var (
	ErrInvalidName  = errors.New("group name required")
	ErrUnauthorized = errors.New("not allowed")
	ErrOwnerTarget  = errors.New("the owner cannot be removed")
	ErrOwnerLeave   = errors.New("the owner cannot leave the group")
	ErrNotMember    = errors.New("user is not a group member")
)

// Store is the slice of storage the service needs.
type Store interface {
	GetUserByID(id string) (*models.User, error)
	GetUsersByIDs(ids []string) ([]models.User, error)
	SaveGroup(group *models.Group) error
	GetGroupByID(id string) (*models.Group, error)
	GetGroupsForUser(userID string) ([]models.Group, error)
	AddGroupMembers(groupID string, userIDs []string) error
	RemoveGroupMember(groupID, userID string) error
	AddGroupAdmin(groupID, userID string) error
	RemoveGroupAdmin(groupID, userID string) error
	UpdateGroupInfo(groupID, name, notice, avatar string) error
}

// Notifier delivers out-of-room events to a user's live connections.
type Notifier interface {
	NotifyUser(userID string, ev models.Event)
}

type Service struct {
	Storage  Store
	Hub      Notifier
	Messages chathub.MessageSender
}

func NewService(s Store, hub Notifier, messages chathub.MessageSender) *Service {
	return &Service{Storage: s, Hub: hub, Messages: messages}
}

// EventPayload is the body of the targeted group events (invite,
// removal, admin changes).
type EventPayload struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Timestamp string `json:"timestamp"`
}

// Create builds a new group owned by ownerID. The creator is always a
// member and seeds the admin set; owner authority itself is derived at
// authorization time, not stored.
func (s *Service) Create(ownerID, name, notice, avatar string, memberIDs []string) (*models.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}

	seen := map[string]struct{}{ownerID: {}}
	members := []string{ownerID}
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}

	group := &models.Group{
		Name:    name,
		Notice:  notice,
		Avatar:  avatar,
		OwnerID: ownerID,
		Admins:  []string{ownerID},
		Members: members,
	}
	if err := s.Storage.SaveGroup(group); err != nil {
		return nil, err
	}
	return group, nil
}

// Get returns the group by id.
func (s *Service) Get(id string) (*models.Group, error) {
	return s.Storage.GetGroupByID(id)
}

// ListForUser returns every group the user is a member of.
func (s *Service) ListForUser(userID string) ([]models.Group, error) {
	return s.Storage.GetGroupsForUser(userID)
}

// Update changes name, notice or avatar. Owner or admin only;
// last-writer-wins on these scalar fields.
func (s *Service) Update(actorID, groupID, name, notice, avatar string) (*models.Group, error) {
	group, err := s.Storage.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsEffectiveAdmin(actorID) {
		return nil, ErrUnauthorized
	}
	if err := s.Storage.UpdateGroupInfo(groupID, name, notice, avatar); err != nil {
		return nil, err
	}
	return s.Storage.GetGroupByID(groupID)
}

// AddMembers adds the given users to the group. Owner or admin only.
// Already-present ids are skipped, so retried requests are harmless.
func (s *Service) AddMembers(actorID, groupID string, userIDs []string) (*models.Group, error) {
	group, err := s.Storage.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsEffectiveAdmin(actorID) {
		return nil, ErrUnauthorized
	}

	seen := map[string]struct{}{}
	newIDs := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup || group.IsMember(id) {
			continue
		}
		seen[id] = struct{}{}
		newIDs = append(newIDs, id)
	}
	if len(newIDs) == 0 {
		return group, nil
	}

	if err := s.Storage.AddGroupMembers(groupID, newIDs); err != nil {
		return nil, err
	}

	added, err := s.Storage.GetUsersByIDs(newIDs)
	if err != nil {
		log.Printf("WARNING: Failed to load invited users for group %s: %v", groupID, err)
	}
	byID := make(map[string]string, len(added))
	for _, u := range added {
		byID[u.ID] = u.DisplayName()
	}
	// Raw ids keep the history line meaningful when the lookup fails.
	names := make([]string, 0, len(newIDs))
	for _, id := range newIDs {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, id)
		}
	}

	ts := s.systemMessage(actorID, group.ID,
		"%s invited "+strings.Join(names, ", ")+" to the group")
	for _, id := range newIDs {
		s.Hub.NotifyUser(id, models.Event{
			Event: models.EventGroupInvite,
			Data:  EventPayload{GroupID: group.ID, GroupName: group.Name, Timestamp: ts},
		})
	}
	return s.Storage.GetGroupByID(groupID)
}

// RemoveMember kicks targetID out of the group. Owner or admin only; the
// owner can never be the target, and an admin may only be removed by the
// owner. Removing someone who already left is a no-op success so retried
// requests are harmless.
func (s *Service) RemoveMember(actorID, groupID, targetID string) (*models.Group, error) {
	group, err := s.Storage.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsEffectiveAdmin(actorID) {
		return nil, ErrUnauthorized
	}
	if targetID == group.OwnerID {
		return nil, ErrOwnerTarget
	}
	if group.IsAdmin(targetID) && actorID != group.OwnerID {
		return nil, ErrUnauthorized
	}
	if !group.IsMember(targetID) {
		return group, nil
	}

	if err := s.Storage.RemoveGroupMember(groupID, targetID); err != nil {
		return nil, err
	}

	targetName := s.displayName(targetID)
	ts := s.systemMessage(actorID, group.ID, "%s removed "+targetName+" from the group")
	s.Hub.NotifyUser(targetID, models.Event{
		Event: models.EventGroupRemoved,
		Data:  EventPayload{GroupID: group.ID, GroupName: group.Name, Timestamp: ts},
	})
	return s.Storage.GetGroupByID(groupID)
}

// SetAdmin appoints targetID as admin. Owner only; the target must be a
// member. Re-appointing an admin is a no-op success.
func (s *Service) SetAdmin(actorID, groupID, targetID string) (*models.Group, error) {
	group, err := s.Storage.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if actorID != group.OwnerID {
		return nil, ErrUnauthorized
	}
	if !group.IsMember(targetID) {
		return nil, ErrNotMember
	}
	if group.IsAdmin(targetID) {
		return group, nil
	}

	if err := s.Storage.AddGroupAdmin(groupID, targetID); err != nil {
		return nil, err
	}

	ts := s.systemMessage(actorID, group.ID,
		"%s made "+s.displayName(targetID)+" a group admin")
	s.Hub.NotifyUser(targetID, models.Event{
		Event: models.EventGroupAdminSet,
		Data:  EventPayload{GroupID: group.ID, GroupName: group.Name, Timestamp: ts},
	})
	return s.Storage.GetGroupByID(groupID)
}

// UnsetAdmin revokes targetID's admin role. Owner only; revoking a
// non-admin is a no-op success.
func (s *Service) UnsetAdmin(actorID, groupID, targetID string) (*models.Group, error) {
	group, err := s.Storage.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if actorID != group.OwnerID {
		return nil, ErrUnauthorized
	}
	if !group.IsAdmin(targetID) {
		return group, nil
	}

	if err := s.Storage.RemoveGroupAdmin(groupID, targetID); err != nil {
		return nil, err
	}

	ts := s.systemMessage(actorID, group.ID,
		"%s revoked "+s.displayName(targetID)+"'s admin role")
	s.Hub.NotifyUser(targetID, models.Event{
		Event: models.EventGroupAdminUnset,
		Data:  EventPayload{GroupID: group.ID, GroupName: group.Name, Timestamp: ts},
	})
	return s.Storage.GetGroupByID(groupID)
}

// Leave removes the acting member from the group. The owner cannot
// leave; leaving a group you are not in is a no-op success.
func (s *Service) Leave(actorID, groupID string) (*models.Group, error) {
	group, err := s.Storage.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if actorID == group.OwnerID {
		return nil, ErrOwnerLeave
	}
	if !group.IsMember(actorID) {
		return group, nil
	}

	if err := s.Storage.RemoveGroupMember(groupID, actorID); err != nil {
		return nil, err
	}

	s.systemMessage(actorID, group.ID, "%s left the group")
	return s.Storage.GetGroupByID(groupID)
}

// systemMessage pushes a system message through the message pipeline,
// with the actor's display name substituted for the %s placeholder.
// Mutations are already committed when this runs, so failures are logged
// and never rolled back. Returns the message timestamp for event
// payloads.
func (s *Service) systemMessage(actorID, room, format string) string {
	content := strings.Replace(format, "%s", s.displayName(actorID), 1)
	msg, err := s.Messages.Submit(actorID, room, content, models.MessageSystem)
	if err != nil {
		log.Printf("WARNING: System message for room %s: %v", room, err)
	}
	if msg != nil {
		return msg.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *Service) displayName(userID string) string {
	user, err := s.Storage.GetUserByID(userID)
	if err != nil {
		log.Printf("WARNING: Failed to resolve user %s: %v", userID, err)
		return userID
	}
	return user.DisplayName()
}
