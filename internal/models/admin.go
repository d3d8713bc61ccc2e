package models

import (
	"time"

	"gorm.io/datatypes"
)

// Admin is an operator account for the management API.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Permissions  datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Granted permission names.
	IsSuperAdmin bool           `gorm:"not null;default:false"`           // Bypasses permission checks.

	Active     bool   `gorm:"not null;default:true"` // Whether the admin can sign in.
	TOTPSecret string `gorm:"type:text"`             // TOTP secret for MFA, empty when disabled.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
