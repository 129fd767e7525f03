package handler

import (
	"errors"
	"log"
	"net/http"

	"wegochat/backend/internal/models"
	"wegochat/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type updateProfileBody struct {
	Nickname string `json:"nickname"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

// SearchUsers finds users by username or nickname.
func (h *Handler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, []models.Profile{})
		return
	}
	users, err := h.Storage.SearchUsers(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	profiles := make([]models.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	c.JSON(http.StatusOK, profiles)
}

// GetUser returns a user's public profile.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Storage.GetUserByID(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

// UpdateProfile updates the caller's display fields and fans the change
// out to everyone who can see them: friends and fellow group members.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var body updateProfileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}

	userID := MustUserID(c)
	user, err := h.Storage.UpdateProfile(userID, body.Nickname, body.Bio, body.Avatar)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	// Best effort after the committed update.
	go h.broadcastProfileUpdate(user)

	c.JSON(http.StatusOK, user.Profile())
}

func (h *Handler) broadcastProfileUpdate(user *models.User) {
	recipients := map[string]struct{}{}
	for _, friendID := range user.Friends {
		recipients[friendID] = struct{}{}
	}
	groups, err := h.Storage.GetGroupsForUser(user.ID)
	if err != nil {
		log.Printf("WARNING: Failed to load groups for profile broadcast of %s: %v", user.ID, err)
	}
	for _, g := range groups {
		for _, memberID := range g.Members {
			if memberID != user.ID {
				recipients[memberID] = struct{}{}
			}
		}
	}

	ev := models.Event{Event: models.EventProfileUpdated, Data: user.Profile()}
	for id := range recipients {
		h.Hub.NotifyUser(id, ev)
	}
}
