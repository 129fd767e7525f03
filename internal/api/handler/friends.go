package handler

import (
	"errors"
	"net/http"
	"strconv"

	"wegochat/backend/internal/friend"
	"wegochat/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type sendRequestBody struct {
	ToUserID string `json:"to_user_id" binding:"required"`
	Remark   string `json:"remark"`
}

type resolveRequestBody struct {
	Status string `json:"status" binding:"required"`
}

// SendFriendRequest creates a pending request to another user.
func (h *Handler) SendFriendRequest(c *gin.Context) {
	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "to_user_id required"})
		return
	}

	req, err := h.Friends.Send(MustUserID(c), body.ToUserID, body.Remark)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "request sent", "id": req.ID})
	case errors.Is(err, friend.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, gin.H{"message": "cannot add yourself as a friend"})
	case errors.Is(err, friend.ErrAlreadyFriends):
		c.JSON(http.StatusConflict, gin.H{"message": "already friends"})
	case errors.Is(err, friend.ErrRequestPending):
		c.JSON(http.StatusConflict, gin.H{"message": "request already sent"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

// ListFriendRequests returns the pending requests addressed to the
// caller.
func (h *Handler) ListFriendRequests(c *gin.Context) {
	requests, err := h.Friends.Pending(MustUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, requests)
}

// ResolveFriendRequest accepts or rejects a pending request.
func (h *Handler) ResolveFriendRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request id"})
		return
	}
	var body resolveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status required"})
		return
	}

	err = h.Friends.Resolve(uint(id), MustUserID(c), body.Status)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "request " + body.Status})
	case errors.Is(err, friend.ErrBadStatus):
		c.JSON(http.StatusBadRequest, gin.H{"message": "status must be accepted or rejected"})
	case errors.Is(err, friend.ErrNotRecipient):
		c.JSON(http.StatusForbidden, gin.H{"message": "not your request"})
	case errors.Is(err, friend.ErrResolved):
		c.JSON(http.StatusConflict, gin.H{"message": "request already resolved"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "request not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

// ListFriends returns the caller's friends with presence.
func (h *Handler) ListFriends(c *gin.Context) {
	friends, err := h.Friends.Friends(MustUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, friends)
}
