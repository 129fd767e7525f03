package handler

import (
	"errors"
	"net/http"

	"wegochat/backend/internal/group"
	"wegochat/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type createGroupBody struct {
	Name    string   `json:"name" binding:"required"`
	Notice  string   `json:"notice"`
	Avatar  string   `json:"avatar"`
	Members []string `json:"members"`
}

type updateGroupBody struct {
	Name   string `json:"name"`
	Notice string `json:"notice"`
	Avatar string `json:"avatar"`
}

type membersBody struct {
	NewMembers []string `json:"new_members" binding:"required"`
}

type adminBody struct {
	MemberID string `json:"member_id" binding:"required"`
}

// groupError maps group service errors to responses. Authorization and
// conflict failures happen before any mutation, so an error here always
// means no state changed.
func groupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, group.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"message": "group name required"})
	case errors.Is(err, group.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"message": "not allowed"})
	case errors.Is(err, group.ErrOwnerTarget):
		c.JSON(http.StatusConflict, gin.H{"message": "the owner cannot be removed"})
	case errors.Is(err, group.ErrOwnerLeave):
		c.JSON(http.StatusConflict, gin.H{"message": "the owner cannot leave the group"})
	case errors.Is(err, group.ErrNotMember):
		c.JSON(http.StatusConflict, gin.H{"message": "user is not a group member"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "group not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

func (h *Handler) CreateGroup(c *gin.Context) {
	var body createGroupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name required"})
		return
	}
	g, err := h.Groups.Create(MustUserID(c), body.Name, body.Notice, body.Avatar, body.Members)
	if err != nil {
		groupError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.Groups.ListForUser(MustUserID(c))
	if err != nil {
		groupError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *Handler) GetGroup(c *gin.Context) {
	g, err := h.Groups.Get(c.Param("id"))
	if err != nil {
		groupError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) UpdateGroup(c *gin.Context) {
	var body updateGroupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	g, err := h.Groups.Update(MustUserID(c), c.Param("id"), body.Name, body.Notice, body.Avatar)
	if err != nil {
		groupError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) AddGroupMembers(c *gin.Context) {
	var body membersBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "new_members required"})
		return
	}
	g, err := h.Groups.AddMembers(MustUserID(c), c.Param("id"), body.NewMembers)
	if err != nil {
		groupError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) RemoveGroupMember(c *gin.Context) {
	g, err := h.Groups.RemoveMember(MustUserID(c), c.Param("id"), c.Param("memberId"))
	if err != nil {
		groupError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) SetGroupAdmin(c *gin.Context) {
	var body adminBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "member_id required"})
		return
	}
	g, err := h.Groups.SetAdmin(MustUserID(c), c.Param("id"), body.MemberID)
	if err != nil {
		groupError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) UnsetGroupAdmin(c *gin.Context) {
	g, err := h.Groups.UnsetAdmin(MustUserID(c), c.Param("id"), c.Param("memberId"))
	if err != nil {
		groupError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) LeaveGroup(c *gin.Context) {
	g, err := h.Groups.Leave(MustUserID(c), c.Param("id"))
	if err != nil {
		groupError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}
