package models

import "time"

// UrlGroup is a named set of URL paths sharing one access policy. A nil AppID
// marks a global (un-tenanted) group; otherwise the group belongs to a single
// application and its name is unique within that application only.
type UrlGroup struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name      string  `gorm:"type:text;not null;uniqueIndex:idx_url_groups_name_app"` // Display name, unique per application.
	AppID     *uint64 `gorm:"index;uniqueIndex:idx_url_groups_name_app"`              // Owning application, nil for global groups.
	Protected bool    `gorm:"not null;default:false"`                                 // System group, cannot be deleted.

	Urls []Url `gorm:"foreignKey:UrlGroupID"` // Paths covered by this group.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
