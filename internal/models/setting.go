package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a mutable runtime configuration value stored as JSON.
type Setting struct {
	Key   string         `gorm:"primaryKey;type:varchar(255)"` // Setting name.
	Value datatypes.JSON `gorm:"type:jsonb"`                   // JSON-encoded value.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
