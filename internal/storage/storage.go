package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"wegochat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("record not found")

type Storage interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUsersByIDs(ids []string) ([]models.User, error)
	SearchUsers(query string) ([]models.User, error)
	UpdateProfile(id, nickname, bio, avatar string) (*models.User, error)
	UpdatePassword(id, passwordHash string) error
	AddFriendEdge(userID, friendID string) error

	// Messages
	SaveMessage(msg *models.Message) error
	GetRoomHistory(room string) ([]models.Message, error)
	GetLastMessage(room string) (*models.Message, error)
	CountMessagesSince(room string, since time.Time) (int64, error)

	// Read cursors
	UpsertReadCursor(userID, room string, at time.Time) error
	GetReadCursor(userID, room string) (*models.ReadCursor, error)

	// Friend requests
	CreateFriendRequest(req *models.FriendRequest) error
	GetPendingRequest(fromID, toID string) (*models.FriendRequest, error)
	GetPendingRequestsFor(userID string) ([]models.FriendRequest, error)
	GetFriendRequestByID(id uint) (*models.FriendRequest, error)
	UpdateFriendRequestStatus(id uint, status string) error

	// Groups
	SaveGroup(group *models.Group) error
	GetGroupByID(id string) (*models.Group, error)
	GetGroupsForUser(userID string) ([]models.Group, error)
	AddGroupMembers(groupID string, userIDs []string) error
	RemoveGroupMember(groupID, userID string) error
	AddGroupAdmin(groupID, userID string) error
	RemoveGroupAdmin(groupID, userID string) error
	UpdateGroupInfo(groupID, name, notice, avatar string) error

	// Presence
	SetUserOnline(userID string) error
	SetUserOffline(userID string) error
	IsUserOnline(userID string) (bool, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get user %s: %v", id, err)
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUsersByIDs(ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := s.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SearchUsers matches usernames and nicknames case-insensitively.
func (s *Service) SearchUsers(query string) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	err := s.DB.Where("username ILIKE ? OR nickname ILIKE ?", pattern, pattern).
		Limit(50).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) UpdateProfile(id, nickname, bio, avatar string) (*models.User, error) {
	updates := map[string]interface{}{
		"nickname": nickname,
		"bio":      bio,
		"avatar":   avatar,
	}
	result := s.DB.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetUserByID(id)
}

func (s *Service) UpdatePassword(id, passwordHash string) error {
	result := s.DB.Model(&models.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFriendEdge appends friendID to the user's friend set as an atomic
// set-union: the guard keeps concurrent accepts from inserting the id
// twice, and re-applying an existing edge is a no-op success.
func (s *Service) AddFriendEdge(userID, friendID string) error {
	result := s.DB.Exec(
		`UPDATE users SET friends = array_append(friends, ?)
		 WHERE id = ? AND NOT (? = ANY(COALESCE(friends, '{}')))`,
		friendID, userID, friendID)
	if result.Error != nil {
		log.Printf("ERROR: Failed to add friend edge %s -> %s: %v", userID, friendID, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the edge already exists or the user row is missing.
		var count int64
		if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// SaveMessage persists the message. CreatedAt is filled by GORM on
// create, so the stored timestamp is always server-assigned.
func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", msg.Room, err)
		return err
	}
	return nil
}

// GetRoomHistory returns the room's messages in creation order.
func (s *Service) GetRoomHistory(room string) ([]models.Message, error) {
	var history []models.Message
	if err := s.DB.Where("room = ?", room).Order("created_at asc").Find(&history).Error; err != nil {
		log.Printf("ERROR: Failed to get history for room %s: %v", room, err)
		return nil, err
	}
	return history, nil
}

func (s *Service) GetLastMessage(room string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.Where("room = ?", room).Order("created_at desc").First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) CountMessagesSince(room string, since time.Time) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Message{}).
		Where("room = ? AND created_at > ?", room, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpsertReadCursor advances the (user, room) watermark, inserting the
// row on first read.
func (s *Service) UpsertReadCursor(userID, room string, at time.Time) error {
	cursor := models.ReadCursor{UserID: userID, Room: room, LastReadAt: at}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "room"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"last_read_at": at}),
	}).Create(&cursor).Error
}

// GetReadCursor returns nil without error when the user has never read
// the room.
func (s *Service) GetReadCursor(userID, room string) (*models.ReadCursor, error) {
	var cursor models.ReadCursor
	err := s.DB.Where("user_id = ? AND room = ?", userID, room).First(&cursor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cursor, nil
}
