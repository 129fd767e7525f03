package chathub_test

import (
	"time"

	"wegochat/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the storage.Storage interface
// built on testify/mock so tests can set expectations per call.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUsersByIDs(ids []string) ([]models.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) SearchUsers(query string) ([]models.User, error) {
	args := m.Called(query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) UpdateProfile(id, nickname, bio, avatar string) (*models.User, error) {
	args := m.Called(id, nickname, bio, avatar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) UpdatePassword(id, passwordHash string) error {
	args := m.Called(id, passwordHash)
	return args.Error(0)
}

func (m *MockStorage) AddFriendEdge(userID, friendID string) error {
	args := m.Called(userID, friendID)
	return args.Error(0)
}

func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetRoomHistory(room string) ([]models.Message, error) {
	args := m.Called(room)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) GetLastMessage(room string) (*models.Message, error) {
	args := m.Called(room)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) CountMessagesSince(room string, since time.Time) (int64, error) {
	args := m.Called(room, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) UpsertReadCursor(userID, room string, at time.Time) error {
	args := m.Called(userID, room, at)
	return args.Error(0)
}

func (m *MockStorage) GetReadCursor(userID, room string) (*models.ReadCursor, error) {
	args := m.Called(userID, room)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReadCursor), args.Error(1)
}

func (m *MockStorage) CreateFriendRequest(req *models.FriendRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockStorage) GetPendingRequest(fromID, toID string) (*models.FriendRequest, error) {
	args := m.Called(fromID, toID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendRequest), args.Error(1)
}

func (m *MockStorage) GetPendingRequestsFor(userID string) ([]models.FriendRequest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FriendRequest), args.Error(1)
}

func (m *MockStorage) GetFriendRequestByID(id uint) (*models.FriendRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendRequest), args.Error(1)
}

func (m *MockStorage) UpdateFriendRequestStatus(id uint, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockStorage) SaveGroup(group *models.Group) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *MockStorage) GetGroupByID(id string) (*models.Group, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockStorage) GetGroupsForUser(userID string) ([]models.Group, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

func (m *MockStorage) AddGroupMembers(groupID string, userIDs []string) error {
	args := m.Called(groupID, userIDs)
	return args.Error(0)
}

func (m *MockStorage) RemoveGroupMember(groupID, userID string) error {
	args := m.Called(groupID, userID)
	return args.Error(0)
}

func (m *MockStorage) AddGroupAdmin(groupID, userID string) error {
	args := m.Called(groupID, userID)
	return args.Error(0)
}

func (m *MockStorage) RemoveGroupAdmin(groupID, userID string) error {
	args := m.Called(groupID, userID)
	return args.Error(0)
}

func (m *MockStorage) UpdateGroupInfo(groupID, name, notice, avatar string) error {
	args := m.Called(groupID, name, notice, avatar)
	return args.Error(0)
}

func (m *MockStorage) SetUserOnline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) SetUserOffline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) IsUserOnline(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}
