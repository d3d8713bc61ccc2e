package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/authgate-dev/authgate/internal/models"
	"github.com/authgate-dev/authgate/internal/settings"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingHandler reads and writes rows of the settings table. Every write
// refreshes the in-process snapshot so other components pick the change up
// without a restart.
type SettingHandler struct {
	conn *gorm.DB
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(conn *gorm.DB) *SettingHandler {
	return &SettingHandler{conn: conn}
}

// List returns all settings rows.
func (h *SettingHandler) List(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.conn.WithContext(c.Request.Context()).Order("key").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list settings failed"})
		return
	}
	out := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		out[row.Key] = json.RawMessage(row.Value)
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// Get returns a single settings row.
func (h *SettingHandler) Get(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing key"})
		return
	}
	var row models.Setting
	errFind := h.conn.WithContext(c.Request.Context()).Where("key = ?", key).First(&row).Error
	if errFind != nil {
		if errFind == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get setting failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": row.Key, "value": json.RawMessage(row.Value)})
}

// updateSettingRequest carries the new JSON value for a settings key.
type updateSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// Update upserts a settings row and reloads the snapshot.
func (h *SettingHandler) Update(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing key"})
		return
	}
	var body updateSettingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.Value) == 0 || !json.Valid(body.Value) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid value"})
		return
	}
	row := models.Setting{Key: key, Value: datatypes.JSON(body.Value)}
	errSave := h.conn.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update setting failed"})
		return
	}
	if errReload := settings.Reload(h.conn); errReload != nil {
		logrus.WithError(errReload).Warn("settings reload after update failed")
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": body.Value})
}
