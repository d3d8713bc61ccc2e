package handlers

import (
	"errors"
	"net/http"

	"github.com/authgate-dev/authgate/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondStoreError maps the store error taxonomy onto HTTP responses.
func respondStoreError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, store.ErrProtected):
		c.JSON(http.StatusConflict, gin.H{"error": "protected group"})
	case errors.Is(err, store.ErrLinked):
		c.JSON(http.StatusConflict, gin.H{"error": "group has grants, unlink first"})
	default:
		logrus.WithError(err).Errorf("%s failed", action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}
