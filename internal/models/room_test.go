package models_test

import (
	"testing"

	"wegochat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectRoomKey(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"already ordered", "aaa", "bbb", "aaa_bbb"},
		{"reversed", "bbb", "aaa", "aaa_bbb"},
		{"uuid-like ids", "f2b1", "0a9c", "0a9c_f2b1"},
		{"equal ids", "aaa", "aaa", "aaa_aaa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.DirectRoomKey(tt.a, tt.b))
		})
	}
}

func TestDirectRoomKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, models.DirectRoomKey("u1", "u2"), models.DirectRoomKey("u2", "u1"),
		"both participants must derive the same room")
}

func TestIsDirectRoom(t *testing.T) {
	assert.True(t, models.IsDirectRoom("u1_u2"))
	assert.False(t, models.IsDirectRoom("2f6c0f8e9a"), "group rooms are addressed by the bare group id")
}

func TestDirectRoomParticipants(t *testing.T) {
	ids, ok := models.DirectRoomParticipants(models.DirectRoomKey("u2", "u1"))
	require.True(t, ok)
	assert.Equal(t, []string{"u1", "u2"}, ids)

	_, ok = models.DirectRoomParticipants("groupid")
	assert.False(t, ok)
}
