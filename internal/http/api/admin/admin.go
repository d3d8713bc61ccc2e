// Package admin wires the management API under /api/admin.
package admin

import (
	"net/http"
	"strings"

	"github.com/authgate-dev/authgate/internal/config"
	"github.com/authgate-dev/authgate/internal/http/api/admin/handlers"
	"github.com/authgate-dev/authgate/internal/models"
	"github.com/authgate-dev/authgate/internal/security"
	"github.com/authgate-dev/authgate/internal/store"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterAdminRoutes mounts login plus the token-protected management
// endpoints on the router.
func RegisterAdminRoutes(router gin.IRouter, conn *gorm.DB, st *store.Store, jwtCfg config.JWTConfig) {
	authHandler := handlers.NewAuthHandler(conn, jwtCfg)
	appHandler := handlers.NewApplicationHandler(st)
	userGroupHandler := handlers.NewUserGroupHandler(st)
	urlGroupHandler := handlers.NewUrlGroupHandler(st)
	userHandler := handlers.NewUserHandler(st)
	grantHandler := handlers.NewGrantHandler(st)
	settingHandler := handlers.NewSettingHandler(conn)

	group := router.Group("/api/admin")
	group.POST("/login", authHandler.Login)

	protected := group.Group("")
	protected.Use(adminAuthMiddleware(conn, jwtCfg))

	protected.POST("/mfa/totp/prepare", authHandler.PrepareTOTP)
	protected.POST("/mfa/totp/confirm", authHandler.ConfirmTOTP)
	protected.POST("/mfa/totp/disable", authHandler.DisableTOTP)

	protected.POST("/applications", appHandler.Create)
	protected.GET("/applications", appHandler.List)
	protected.GET("/applications/:id", appHandler.Get)
	protected.PUT("/applications/:id", appHandler.Update)
	protected.DELETE("/applications/:id", appHandler.Delete)

	protected.POST("/user-groups", userGroupHandler.Create)
	protected.GET("/user-groups", userGroupHandler.List)
	protected.GET("/user-groups/:id", userGroupHandler.Get)
	protected.PUT("/user-groups/:id", userGroupHandler.Update)
	protected.DELETE("/user-groups/:id", userGroupHandler.Delete)
	protected.POST("/user-groups/:id/members", userGroupHandler.AddMember)
	protected.DELETE("/user-groups/:id/members", userGroupHandler.RemoveMember)
	protected.GET("/user-groups/:id/members", userGroupHandler.ListMembers)
	protected.GET("/user-groups/:id/grants", grantHandler.ListForUserGroup)

	protected.POST("/url-groups", urlGroupHandler.Create)
	protected.GET("/url-groups", urlGroupHandler.List)
	protected.GET("/url-groups/:id", urlGroupHandler.Get)
	protected.DELETE("/url-groups/:id", urlGroupHandler.Delete)
	protected.POST("/url-groups/:id/urls", urlGroupHandler.AddUrl)
	protected.DELETE("/url-groups/:id/urls", urlGroupHandler.RemoveUrl)
	protected.GET("/url-groups/:id/urls", urlGroupHandler.ListUrls)

	protected.GET("/users", userHandler.List)
	protected.DELETE("/users/:id", userHandler.Delete)

	protected.POST("/grants", grantHandler.Link)
	protected.DELETE("/grants", grantHandler.Unlink)

	protected.GET("/settings", settingHandler.List)
	protected.GET("/settings/:key", settingHandler.Get)
	protected.PUT("/settings/:key", settingHandler.Update)
}

// adminAuthMiddleware validates the bearer token and loads the admin row.
func adminAuthMiddleware(conn *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, errParse := security.ParseAdminToken(jwtCfg.Secret, raw)
		if errParse != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		var admin models.Admin
		errFind := conn.WithContext(c.Request.Context()).First(&admin, "id = ?", claims.AdminID).Error
		if errFind != nil || !admin.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(handlers.AdminContextKey, &admin)
		c.Next()
	}
}
