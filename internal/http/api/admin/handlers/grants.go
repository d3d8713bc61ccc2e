package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/authgate-dev/authgate/internal/store"
	"github.com/gin-gonic/gin"
)

// GrantHandler links user groups to URL groups.
type GrantHandler struct {
	store *store.Store
}

// NewGrantHandler constructs a GrantHandler.
func NewGrantHandler(st *store.Store) *GrantHandler {
	return &GrantHandler{store: st}
}

// grantRequest defines the request body for grant changes.
type grantRequest struct {
	UserGroupID uint64 `json:"user_group_id"`
	UrlGroupID  uint64 `json:"url_group_id"`
}

// Link grants a user group access to a URL group. Linking an existing
// pair is a no-op.
func (h *GrantHandler) Link(c *gin.Context) {
	var body grantRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserGroupID == 0 || body.UrlGroupID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing group ids"})
		return
	}
	if errLink := h.store.LinkGroups(c.Request.Context(), body.UserGroupID, body.UrlGroupID); errLink != nil {
		respondStoreError(c, errLink, "link groups")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Unlink revokes a grant.
func (h *GrantHandler) Unlink(c *gin.Context) {
	var body grantRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if errUnlink := h.store.UnlinkGroups(c.Request.Context(), body.UserGroupID, body.UrlGroupID); errUnlink != nil {
		respondStoreError(c, errUnlink, "unlink groups")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListForUserGroup returns the URL groups granted to a user group.
func (h *GrantHandler) ListForUserGroup(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	groups, errList := h.store.ListGrantsForUserGroup(c.Request.Context(), id)
	if errList != nil {
		respondStoreError(c, errList, "list grants")
		return
	}
	out := make([]gin.H, 0, len(groups))
	for _, group := range groups {
		out = append(out, gin.H{"id": group.ID, "name": group.Name, "app_id": group.AppID})
	}
	c.JSON(http.StatusOK, gin.H{"url_groups": out})
}
