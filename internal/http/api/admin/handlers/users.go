package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/authgate-dev/authgate/internal/store"
	"github.com/gin-gonic/gin"
)

// UserHandler exposes read and delete operations on known users.
type UserHandler struct {
	store *store.Store
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

// List returns known users, filtered by ?q= substring match on email.
func (h *UserHandler) List(c *gin.Context) {
	users, errList := h.store.SearchUsers(c.Request.Context(), c.Query("q"))
	if errList != nil {
		respondStoreError(c, errList, "list users")
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{"id": u.ID, "email": u.Email, "created_at": u.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// Delete removes a user and their memberships.
func (h *UserHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errDelete := h.store.DeleteUser(c.Request.Context(), id); errDelete != nil {
		respondStoreError(c, errDelete, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
