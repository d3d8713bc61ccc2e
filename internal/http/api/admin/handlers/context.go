package handlers

import (
	"github.com/authgate-dev/authgate/internal/models"
	"github.com/gin-gonic/gin"
)

// AdminContextKey is where the auth middleware stores the authenticated
// admin record.
const AdminContextKey = "admin"

// currentAdmin returns the admin set by the auth middleware.
func currentAdmin(c *gin.Context) (*models.Admin, bool) {
	value, exists := c.Get(AdminContextKey)
	if !exists {
		return nil, false
	}
	admin, ok := value.(*models.Admin)
	return admin, ok
}
