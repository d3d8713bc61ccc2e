package models

import "time"

// Url is a single request path owned by a URL group.
type Url struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Path       string `gorm:"type:text;not null;uniqueIndex:idx_urls_path_group"` // Request path, unique within its group.
	UrlGroupID uint64 `gorm:"not null;index;uniqueIndex:idx_urls_path_group"`     // Owning URL group.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
