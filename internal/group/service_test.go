package group_test

import (
	"errors"
	"testing"

	"wegochat/backend/internal/group"
	"wegochat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockStore) GetUsersByIDs(ids []string) ([]models.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *mockStore) SaveGroup(g *models.Group) error {
	args := m.Called(g)
	return args.Error(0)
}

func (m *mockStore) GetGroupByID(id string) (*models.Group, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *mockStore) GetGroupsForUser(userID string) ([]models.Group, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

func (m *mockStore) AddGroupMembers(groupID string, userIDs []string) error {
	args := m.Called(groupID, userIDs)
	return args.Error(0)
}

func (m *mockStore) RemoveGroupMember(groupID, userID string) error {
	args := m.Called(groupID, userID)
	return args.Error(0)
}

func (m *mockStore) AddGroupAdmin(groupID, userID string) error {
	args := m.Called(groupID, userID)
	return args.Error(0)
}

func (m *mockStore) RemoveGroupAdmin(groupID, userID string) error {
	args := m.Called(groupID, userID)
	return args.Error(0)
}

func (m *mockStore) UpdateGroupInfo(groupID, name, notice, avatar string) error {
	args := m.Called(groupID, name, notice, avatar)
	return args.Error(0)
}

type recordingNotifier struct {
	events map[string][]models.Event
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(map[string][]models.Event)}
}

func (n *recordingNotifier) NotifyUser(userID string, ev models.Event) {
	n.events[userID] = append(n.events[userID], ev)
}

// recordingSender captures system messages instead of running the real
// pipeline.
type recordingSender struct {
	messages []*models.Message
}

func (s *recordingSender) Submit(senderID, room, content, kind string) (*models.Message, error) {
	msg := &models.Message{Room: room, SenderID: senderID, Content: content, Type: kind}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func newService() (*group.Service, *mockStore, *recordingNotifier, *recordingSender) {
	store := new(mockStore)
	hub := newRecordingNotifier()
	sender := &recordingSender{}
	return group.NewService(store, hub, sender), store, hub, sender
}

// testGroup: owner > admin > member, plus one user outside the group.
func testGroup() *models.Group {
	return &models.Group{
		ID:      "g1",
		Name:    "Weekend Hikers",
		OwnerID: "owner",
		Admins:  []string{"owner", "admin"},
		Members: []string{"owner", "admin", "member"},
	}
}

func expectUser(store *mockStore, id, username string) {
	store.On("GetUserByID", id).Return(&models.User{ID: id, Username: username}, nil).Maybe()
}

func TestCreate_OwnerIsAlwaysMemberAndAdmin(t *testing.T) {
	svc, store, _, _ := newService()

	store.On("SaveGroup", mock.AnythingOfType("*models.Group")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.Group).ID = "g1"
		}).Return(nil)

	g, err := svc.Create("owner", "Weekend Hikers", "", "", []string{"u2", "u2", "owner", "u3"})
	require.NoError(t, err)

	assert.Equal(t, "owner", g.OwnerID)
	assert.Equal(t, []string{"owner", "u2", "u3"}, []string(g.Members), "duplicates and the owner collapse")
	assert.Equal(t, []string{"owner"}, []string(g.Admins))
}

func TestCreate_RequiresName(t *testing.T) {
	svc, store, _, _ := newService()

	_, err := svc.Create("owner", "   ", "", "", nil)
	assert.ErrorIs(t, err, group.ErrInvalidName)
	store.AssertNotCalled(t, "SaveGroup", mock.Anything)
}

func TestAddMembers_AdminInvitesWithSystemMessage(t *testing.T) {
	svc, store, hub, sender := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)
	store.On("AddGroupMembers", "g1", []string{"u9"}).Return(nil)
	store.On("GetUsersByIDs", []string{"u9"}).Return([]models.User{{ID: "u9", Username: "dave"}}, nil)
	expectUser(store, "admin", "amy")

	_, err := svc.AddMembers("admin", "g1", []string{"u9", "member"})
	require.NoError(t, err)

	store.AssertCalled(t, "AddGroupMembers", "g1", []string{"u9"})

	require.Len(t, sender.messages, 1)
	assert.Equal(t, models.MessageSystem, sender.messages[0].Type)
	assert.Equal(t, "amy invited dave to the group", sender.messages[0].Content)

	require.Len(t, hub.events["u9"], 1)
	assert.Equal(t, models.EventGroupInvite, hub.events["u9"][0].Event)
	assert.Empty(t, hub.events["member"], "existing members are not re-invited")
}

func TestAddMembers_FallsBackToIDsWhenLookupFails(t *testing.T) {
	svc, store, _, sender := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)
	store.On("AddGroupMembers", "g1", []string{"u9"}).Return(nil)
	store.On("GetUsersByIDs", []string{"u9"}).Return(nil, errors.New("db down"))
	expectUser(store, "admin", "amy")

	_, err := svc.AddMembers("admin", "g1", []string{"u9"})
	require.NoError(t, err)

	require.Len(t, sender.messages, 1)
	assert.Equal(t, "amy invited u9 to the group", sender.messages[0].Content)
}

func TestAddMembers_MemberIsUnauthorized(t *testing.T) {
	svc, store, _, _ := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)

	_, err := svc.AddMembers("member", "g1", []string{"u9"})
	assert.ErrorIs(t, err, group.ErrUnauthorized)
	store.AssertNotCalled(t, "AddGroupMembers", mock.Anything, mock.Anything)
}

func TestAddMembers_AllAlreadyPresentIsNoop(t *testing.T) {
	svc, store, _, sender := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)

	g, err := svc.AddMembers("owner", "g1", []string{"member", "admin"})
	require.NoError(t, err)
	assert.NotNil(t, g)
	store.AssertNotCalled(t, "AddGroupMembers", mock.Anything, mock.Anything)
	assert.Empty(t, sender.messages)
}

func TestRemoveMember_AdminRemovesMember(t *testing.T) {
	svc, store, hub, sender := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)
	store.On("RemoveGroupMember", "g1", "member").Return(nil)
	expectUser(store, "admin", "amy")
	expectUser(store, "member", "mike")

	_, err := svc.RemoveMember("admin", "g1", "member")
	require.NoError(t, err)

	require.Len(t, sender.messages, 1)
	assert.Equal(t, "amy removed mike from the group", sender.messages[0].Content)
	require.Len(t, hub.events["member"], 1)
	assert.Equal(t, models.EventGroupRemoved, hub.events["member"][0].Event)
}

func TestRemoveMember_OwnerIsUntouchable(t *testing.T) {
	svc, store, _, _ := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)

	_, err := svc.RemoveMember("admin", "g1", "owner")
	assert.ErrorIs(t, err, group.ErrOwnerTarget)
	store.AssertNotCalled(t, "RemoveGroupMember", mock.Anything, mock.Anything)
}

func TestRemoveMember_OnlyOwnerRemovesAdmins(t *testing.T) {
	svc, store, _, _ := newService()

	g := testGroup()
	g.Admins = append(g.Admins, "admin2")
	g.Members = append(g.Members, "admin2")
	store.On("GetGroupByID", "g1").Return(g, nil)

	_, err := svc.RemoveMember("admin", "g1", "admin2")
	assert.ErrorIs(t, err, group.ErrUnauthorized)

	store.On("RemoveGroupMember", "g1", "admin2").Return(nil)
	expectUser(store, "owner", "olly")
	expectUser(store, "admin2", "anna")

	_, err = svc.RemoveMember("owner", "g1", "admin2")
	require.NoError(t, err)
	store.AssertCalled(t, "RemoveGroupMember", "g1", "admin2")
}

func TestRemoveMember_AbsentTargetIsNoop(t *testing.T) {
	svc, store, hub, sender := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)

	g, err := svc.RemoveMember("owner", "g1", "stranger")
	require.NoError(t, err)
	assert.NotNil(t, g)
	store.AssertNotCalled(t, "RemoveGroupMember", mock.Anything, mock.Anything)
	assert.Empty(t, sender.messages)
	assert.Empty(t, hub.events["stranger"])
}

func TestSetAdmin_OwnerOnly(t *testing.T) {
	svc, store, _, _ := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)

	_, err := svc.SetAdmin("admin", "g1", "member")
	assert.ErrorIs(t, err, group.ErrUnauthorized)

	_, err = svc.SetAdmin("member", "g1", "member")
	assert.ErrorIs(t, err, group.ErrUnauthorized)
	store.AssertNotCalled(t, "AddGroupAdmin", mock.Anything, mock.Anything)
}

func TestSetAdmin_OwnerAppointsMember(t *testing.T) {
	svc, store, hub, sender := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)
	store.On("AddGroupAdmin", "g1", "member").Return(nil)
	expectUser(store, "owner", "olly")
	expectUser(store, "member", "mike")

	_, err := svc.SetAdmin("owner", "g1", "member")
	require.NoError(t, err)

	store.AssertCalled(t, "AddGroupAdmin", "g1", "member")
	require.Len(t, sender.messages, 1)
	assert.Equal(t, "olly made mike a group admin", sender.messages[0].Content)
	require.Len(t, hub.events["member"], 1)
	assert.Equal(t, models.EventGroupAdminSet, hub.events["member"][0].Event)
}

func TestSetAdmin_TargetMustBeMember(t *testing.T) {
	svc, store, _, _ := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)

	_, err := svc.SetAdmin("owner", "g1", "stranger")
	assert.ErrorIs(t, err, group.ErrNotMember)
}

func TestSetAdmin_AlreadyAdminIsNoop(t *testing.T) {
	svc, store, _, sender := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)

	g, err := svc.SetAdmin("owner", "g1", "admin")
	require.NoError(t, err)
	assert.NotNil(t, g)
	store.AssertNotCalled(t, "AddGroupAdmin", mock.Anything, mock.Anything)
	assert.Empty(t, sender.messages)
}

func TestUnsetAdmin_OwnerRevokes(t *testing.T) {
	svc, store, hub, _ := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)
	store.On("RemoveGroupAdmin", "g1", "admin").Return(nil)
	expectUser(store, "owner", "olly")
	expectUser(store, "admin", "amy")

	_, err := svc.UnsetAdmin("owner", "g1", "admin")
	require.NoError(t, err)

	store.AssertCalled(t, "RemoveGroupAdmin", "g1", "admin")
	require.Len(t, hub.events["admin"], 1)
	assert.Equal(t, models.EventGroupAdminUnset, hub.events["admin"][0].Event)
}

func TestUnsetAdmin_NonAdminTargetIsNoop(t *testing.T) {
	svc, store, _, _ := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)

	g, err := svc.UnsetAdmin("owner", "g1", "member")
	require.NoError(t, err)
	assert.NotNil(t, g)
	store.AssertNotCalled(t, "RemoveGroupAdmin", mock.Anything, mock.Anything)
}

func TestLeave_MemberLeavesWithSystemMessage(t *testing.T) {
	svc, store, _, sender := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)
	store.On("RemoveGroupMember", "g1", "member").Return(nil)
	expectUser(store, "member", "mike")

	_, err := svc.Leave("member", "g1")
	require.NoError(t, err)

	store.AssertCalled(t, "RemoveGroupMember", "g1", "member")
	require.Len(t, sender.messages, 1)
	assert.Equal(t, "mike left the group", sender.messages[0].Content)
}

func TestLeave_OwnerCannotLeave(t *testing.T) {
	svc, store, _, _ := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)

	_, err := svc.Leave("owner", "g1")
	assert.ErrorIs(t, err, group.ErrOwnerLeave)
	store.AssertNotCalled(t, "RemoveGroupMember", mock.Anything, mock.Anything)
}

func TestUpdate_EffectiveAdminOnly(t *testing.T) {
	svc, store, _, _ := newService()

	store.On("GetGroupByID", "g1").Return(testGroup(), nil)

	_, err := svc.Update("member", "g1", "New Name", "", "")
	assert.ErrorIs(t, err, group.ErrUnauthorized)

	store.On("UpdateGroupInfo", "g1", "New Name", "", "").Return(nil)
	_, err = svc.Update("admin", "g1", "New Name", "", "")
	require.NoError(t, err)
	store.AssertCalled(t, "UpdateGroupInfo", "g1", "New Name", "", "")
}
