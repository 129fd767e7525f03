package storage

import (
	"errors"
	"log"

	"wegochat/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateFriendRequest(req *models.FriendRequest) error {
	if req.Status == "" {
		req.Status = models.RequestPending
	}
	if err := s.DB.Create(req).Error; err != nil {
		log.Printf("ERROR: Failed to save friend request %s -> %s: %v", req.FromID, req.ToID, err)
		return err
	}
	return nil
}

// GetPendingRequest returns nil without error when no pending request
// exists for the ordered pair.
func (s *Service) GetPendingRequest(fromID, toID string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.DB.Where("from_id = ? AND to_id = ? AND status = ?",
		fromID, toID, models.RequestPending).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) GetPendingRequestsFor(userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := s.DB.Where("to_id = ? AND status = ?", userID, models.RequestPending).
		Order("created_at asc").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Service) GetFriendRequestByID(id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.DB.First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) UpdateFriendRequestStatus(id uint, status string) error {
	return s.DB.Model(&models.FriendRequest{}).Where("id = ?", id).
		Update("status", status).Error
}

func (s *Service) SaveGroup(group *models.Group) error {
	return s.DB.Save(group).Error
}

func (s *Service) GetGroupByID(id string) (*models.Group, error) {
	var group models.Group
	err := s.DB.First(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get group %s: %v", id, err)
		return nil, err
	}
	return &group, nil
}

func (s *Service) GetGroupsForUser(userID string) ([]models.Group, error) {
	var groups []models.Group
	if err := s.DB.Where("? = ANY(members)", userID).Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// AddGroupMembers applies an atomic set-union per id so two admins
// adding members concurrently cannot lose each other's updates.
func (s *Service) AddGroupMembers(groupID string, userIDs []string) error {
	for _, id := range userIDs {
		result := s.DB.Exec(
			`UPDATE groups SET members = array_append(members, ?)
			 WHERE id = ? AND NOT (? = ANY(COALESCE(members, '{}')))`,
			id, groupID, id)
		if result.Error != nil {
			log.Printf("ERROR: Failed to add member %s to group %s: %v", id, groupID, result.Error)
			return result.Error
		}
	}
	return nil
}

// RemoveGroupMember drops the user from the member set and the admin set
// in one statement, keeping the "members removed also lose admin"
// invariant even under concurrent writers. Removing an absent member is
// a no-op.
func (s *Service) RemoveGroupMember(groupID, userID string) error {
	return s.DB.Exec(
		`UPDATE groups SET members = array_remove(members, ?),
		                   admins  = array_remove(admins, ?)
		 WHERE id = ?`,
		userID, userID, groupID).Error
}

func (s *Service) AddGroupAdmin(groupID, userID string) error {
	return s.DB.Exec(
		`UPDATE groups SET admins = array_append(admins, ?)
		 WHERE id = ? AND NOT (? = ANY(COALESCE(admins, '{}')))`,
		userID, groupID, userID).Error
}

func (s *Service) RemoveGroupAdmin(groupID, userID string) error {
	return s.DB.Exec(
		`UPDATE groups SET admins = array_remove(admins, ?) WHERE id = ?`,
		userID, groupID).Error
}

// UpdateGroupInfo overwrites only the provided scalar fields;
// last-writer-wins is acceptable here, unlike the membership sets.
func (s *Service) UpdateGroupInfo(groupID, name, notice, avatar string) error {
	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if notice != "" {
		updates["notice"] = notice
	}
	if avatar != "" {
		updates["avatar"] = avatar
	}
	if len(updates) == 0 {
		return nil
	}
	return s.DB.Model(&models.Group{}).Where("id = ?", groupID).Updates(updates).Error
}
