package models

import "time"

// Application identifies a protected origin (tenant) by its public host.
type Application struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:text;not null;uniqueIndex"` // Display name.
	Host        string `gorm:"type:text;not null;uniqueIndex"` // Public host the proxy forwards for.
	Description string `gorm:"type:text"`                      // Free-form description.

	UrlGroups []UrlGroup `gorm:"foreignKey:AppID"` // URL groups scoped to this application.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
