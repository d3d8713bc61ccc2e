package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/authgate-dev/authgate/internal/store"
	"github.com/gin-gonic/gin"
)

// UserGroupHandler manages user group endpoints.
type UserGroupHandler struct {
	store *store.Store
}

// NewUserGroupHandler constructs a UserGroupHandler.
func NewUserGroupHandler(st *store.Store) *UserGroupHandler {
	return &UserGroupHandler{store: st}
}

// createUserGroupRequest defines the request body for user group creation.
type createUserGroupRequest struct {
	Name string `json:"name"`
}

// Create creates a new user group.
func (h *UserGroupHandler) Create(c *gin.Context) {
	var body createUserGroupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	group, errCreate := h.store.CreateUserGroup(c.Request.Context(), body.Name)
	if errCreate != nil {
		respondStoreError(c, errCreate, "create user group")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         group.ID,
		"name":       group.Name,
		"protected":  group.Protected,
		"created_at": group.CreatedAt,
	})
}

// List returns all user groups.
func (h *UserGroupHandler) List(c *gin.Context) {
	groups, errList := h.store.ListUserGroups(c.Request.Context())
	if errList != nil {
		respondStoreError(c, errList, "list user groups")
		return
	}
	out := make([]gin.H, 0, len(groups))
	for _, group := range groups {
		out = append(out, gin.H{
			"id":         group.ID,
			"name":       group.Name,
			"protected":  group.Protected,
			"created_at": group.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"user_groups": out})
}

// Get returns a user group by ID.
func (h *UserGroupHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	group, errGet := h.store.GetUserGroup(c.Request.Context(), id)
	if errGet != nil {
		respondStoreError(c, errGet, "get user group")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         group.ID,
		"name":       group.Name,
		"protected":  group.Protected,
		"created_at": group.CreatedAt,
	})
}

// updateUserGroupRequest defines the request body for user group updates.
type updateUserGroupRequest struct {
	Name string `json:"name"`
}

// Update renames a user group.
func (h *UserGroupHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateUserGroupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	group, errUpdate := h.store.RenameUserGroup(c.Request.Context(), id, body.Name)
	if errUpdate != nil {
		respondStoreError(c, errUpdate, "update user group")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": group.ID, "name": group.Name})
}

// Delete removes a user group.
func (h *UserGroupHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errDelete := h.store.DeleteUserGroup(c.Request.Context(), id); errDelete != nil {
		respondStoreError(c, errDelete, "delete user group")
		return
	}
	c.Status(http.StatusNoContent)
}

// memberRequest defines the request body for membership changes.
type memberRequest struct {
	Email string `json:"email"`
}

// AddMember links a user (created on first use) to the group.
func (h *UserGroupHandler) AddMember(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body memberRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	if errAdd := h.store.AddUserToGroup(c.Request.Context(), id, email); errAdd != nil {
		respondStoreError(c, errAdd, "add member")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RemoveMember unlinks a user from the group.
func (h *UserGroupHandler) RemoveMember(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body memberRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if errRemove := h.store.RemoveUserFromGroup(c.Request.Context(), id, strings.TrimSpace(body.Email)); errRemove != nil {
		respondStoreError(c, errRemove, "remove member")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMembers returns the member emails of the group.
func (h *UserGroupHandler) ListMembers(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	emails, errList := h.store.ListGroupMembers(c.Request.Context(), id)
	if errList != nil {
		respondStoreError(c, errList, "list members")
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": emails})
}
