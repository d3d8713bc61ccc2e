package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/authgate-dev/authgate/internal/store"
	"github.com/gin-gonic/gin"
)

// UrlGroupHandler manages URL group and URL endpoints.
type UrlGroupHandler struct {
	store *store.Store
}

// NewUrlGroupHandler constructs a UrlGroupHandler.
func NewUrlGroupHandler(st *store.Store) *UrlGroupHandler {
	return &UrlGroupHandler{store: st}
}

// createUrlGroupRequest defines the request body for URL group creation.
type createUrlGroupRequest struct {
	Name  string  `json:"name"`
	AppID *uint64 `json:"app_id"`
}

// Create creates a new URL group, optionally scoped to an application.
func (h *UrlGroupHandler) Create(c *gin.Context) {
	var body createUrlGroupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	group, errCreate := h.store.CreateUrlGroup(c.Request.Context(), body.Name, body.AppID)
	if errCreate != nil {
		respondStoreError(c, errCreate, "create url group")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        group.ID,
		"name":      group.Name,
		"app_id":    group.AppID,
		"protected": group.Protected,
	})
}

// List returns URL groups. With ?app_id=N only groups of that application
// are returned; without it only global groups are returned.
func (h *UrlGroupHandler) List(c *gin.Context) {
	var appID *uint64
	if raw := strings.TrimSpace(c.Query("app_id")); raw != "" {
		parsed, errParse := strconv.ParseUint(raw, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid app_id"})
			return
		}
		appID = &parsed
	}
	groups, errList := h.store.ListUrlGroups(c.Request.Context(), appID)
	if errList != nil {
		respondStoreError(c, errList, "list url groups")
		return
	}
	out := make([]gin.H, 0, len(groups))
	for _, group := range groups {
		out = append(out, gin.H{
			"id":        group.ID,
			"name":      group.Name,
			"app_id":    group.AppID,
			"protected": group.Protected,
		})
	}
	c.JSON(http.StatusOK, gin.H{"url_groups": out})
}

// Get returns a URL group by ID.
func (h *UrlGroupHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	group, errGet := h.store.GetUrlGroup(c.Request.Context(), id)
	if errGet != nil {
		respondStoreError(c, errGet, "get url group")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        group.ID,
		"name":      group.Name,
		"app_id":    group.AppID,
		"protected": group.Protected,
	})
}

// Delete removes a URL group and its URLs.
func (h *UrlGroupHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errDelete := h.store.DeleteUrlGroup(c.Request.Context(), id); errDelete != nil {
		respondStoreError(c, errDelete, "delete url group")
		return
	}
	c.Status(http.StatusNoContent)
}

// urlRequest defines the request body for URL changes.
type urlRequest struct {
	Path string `json:"path"`
}

// AddUrl registers a path under the group.
func (h *UrlGroupHandler) AddUrl(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body urlRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Path) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing path"})
		return
	}
	u, errAdd := h.store.AddUrlToGroup(c.Request.Context(), id, body.Path)
	if errAdd != nil {
		respondStoreError(c, errAdd, "add url")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": u.ID, "path": u.Path, "url_group_id": u.UrlGroupID})
}

// RemoveUrl removes a path from the group.
func (h *UrlGroupHandler) RemoveUrl(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body urlRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if errRemove := h.store.RemoveUrlFromGroup(c.Request.Context(), id, strings.TrimSpace(body.Path)); errRemove != nil {
		respondStoreError(c, errRemove, "remove url")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUrls returns the paths registered under the group.
func (h *UrlGroupHandler) ListUrls(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	urls, errList := h.store.ListUrls(c.Request.Context(), id)
	if errList != nil {
		respondStoreError(c, errList, "list urls")
		return
	}
	out := make([]gin.H, 0, len(urls))
	for _, u := range urls {
		out = append(out, gin.H{"id": u.ID, "path": u.Path})
	}
	c.JSON(http.StatusOK, gin.H{"urls": out})
}
