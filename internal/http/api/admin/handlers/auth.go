package handlers

import (
	"net/http"
	"strings"

	"github.com/authgate-dev/authgate/internal/config"
	"github.com/authgate-dev/authgate/internal/models"
	"github.com/authgate-dev/authgate/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler handles admin login and TOTP enrollment.
type AuthHandler struct {
	conn *gorm.DB
	jwt  config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(conn *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{conn: conn, jwt: jwtCfg}
}

// loginRequest defines the request body for admin login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

// Login verifies admin credentials and issues a session token. Accounts
// with TOTP enabled must supply a valid code; a correct password without
// one gets a 401 with totp_required so clients can show the second step.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing credentials"})
		return
	}

	var admin models.Admin
	errFind := h.conn.WithContext(c.Request.Context()).Where("username = ?", username).First(&admin).Error
	if errFind != nil {
		if errFind != gorm.ErrRecordNotFound {
			logrus.WithError(errFind).Error("admin lookup failed")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !admin.Active || !security.CheckPassword(admin.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if admin.TOTPSecret != "" {
		if body.TOTPCode == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "totp required", "totp_required": true})
			return
		}
		if !security.ValidateTOTP(admin.TOTPSecret, body.TOTPCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid totp code"})
			return
		}
	}

	token, errSign := security.SignAdminToken(h.jwt.Secret, h.jwt.Expiry, admin.ID, admin.Username)
	if errSign != nil {
		logrus.WithError(errSign).Error("admin token sign failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":          token,
		"username":       admin.Username,
		"is_super_admin": admin.IsSuperAdmin,
	})
}

// PrepareTOTP generates a pending TOTP secret for the signed-in admin. The
// secret only takes effect once confirmed with a valid code.
func (h *AuthHandler) PrepareTOTP(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	key, errGen := security.GenerateTOTPKey(admin.Username)
	if errGen != nil {
		logrus.WithError(errGen).Error("totp generate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "totp setup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": key.Secret(), "otpauth_url": key.URL()})
}

// confirmTOTPRequest carries the pending secret and a code proving the
// authenticator was enrolled.
type confirmTOTPRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

// ConfirmTOTP enables TOTP for the signed-in admin.
func (h *AuthHandler) ConfirmTOTP(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var body confirmTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	secret := strings.TrimSpace(body.Secret)
	if secret == "" || !security.ValidateTOTP(secret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid totp code"})
		return
	}
	errSave := h.conn.WithContext(c.Request.Context()).
		Model(&models.Admin{}).Where("id = ?", admin.ID).
		Update("totp_secret", secret).Error
	if errSave != nil {
		logrus.WithError(errSave).Error("totp enable failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "totp setup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// disableTOTPRequest requires a current code before turning MFA off.
type disableTOTPRequest struct {
	Code string `json:"code"`
}

// DisableTOTP turns off TOTP for the signed-in admin.
func (h *AuthHandler) DisableTOTP(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var body disableTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if admin.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp not enabled"})
		return
	}
	if !security.ValidateTOTP(admin.TOTPSecret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid totp code"})
		return
	}
	errSave := h.conn.WithContext(c.Request.Context()).
		Model(&models.Admin{}).Where("id = ?", admin.ID).
		Update("totp_secret", "").Error
	if errSave != nil {
		logrus.WithError(errSave).Error("totp disable failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "totp disable failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
