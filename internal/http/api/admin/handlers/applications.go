package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/authgate-dev/authgate/internal/store"
	"github.com/gin-gonic/gin"
)

// ApplicationHandler manages tenant endpoints.
type ApplicationHandler struct {
	store *store.Store
}

// NewApplicationHandler constructs an ApplicationHandler.
func NewApplicationHandler(st *store.Store) *ApplicationHandler {
	return &ApplicationHandler{store: st}
}

// createApplicationRequest defines the request body for application creation.
type createApplicationRequest struct {
	Name        string `json:"name"`
	Host        string `json:"host"`
	Description string `json:"description"`
}

// Create registers a new application (tenant).
func (h *ApplicationHandler) Create(c *gin.Context) {
	var body createApplicationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Host) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name or host"})
		return
	}

	app, errCreate := h.store.CreateApplication(c.Request.Context(), body.Name, body.Host, body.Description)
	if errCreate != nil {
		respondStoreError(c, errCreate, "create application")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":          app.ID,
		"name":        app.Name,
		"host":        app.Host,
		"description": app.Description,
		"created_at":  app.CreatedAt,
	})
}

// List returns all applications with their URL group counts.
func (h *ApplicationHandler) List(c *gin.Context) {
	rows, errList := h.store.ListApplications(c.Request.Context())
	if errList != nil {
		respondStoreError(c, errList, "list applications")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":               row.ID,
			"name":             row.Name,
			"host":             row.Host,
			"description":      row.Description,
			"url_groups_count": row.UrlGroupsCount,
			"created_at":       row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"applications": out})
}

// Get returns an application by ID.
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	app, errGet := h.store.GetApplication(c.Request.Context(), id)
	if errGet != nil {
		respondStoreError(c, errGet, "get application")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          app.ID,
		"name":        app.Name,
		"host":        app.Host,
		"description": app.Description,
		"created_at":  app.CreatedAt,
	})
}

// updateApplicationRequest defines the request body for application updates.
type updateApplicationRequest struct {
	Name        *string `json:"name"`
	Host        *string `json:"host"`
	Description *string `json:"description"`
}

// Update modifies an application.
func (h *ApplicationHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateApplicationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	app, errUpdate := h.store.UpdateApplication(c.Request.Context(), id, body.Name, body.Host, body.Description)
	if errUpdate != nil {
		respondStoreError(c, errUpdate, "update application")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          app.ID,
		"name":        app.Name,
		"host":        app.Host,
		"description": app.Description,
	})
}

// Delete removes an application and its URL groups.
func (h *ApplicationHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errDelete := h.store.DeleteApplication(c.Request.Context(), id); errDelete != nil {
		respondStoreError(c, errDelete, "delete application")
		return
	}
	c.Status(http.StatusNoContent)
}
