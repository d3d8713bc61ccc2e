package models

// Membership links a user to a user group (many-to-many). Duplicate inserts
// are treated as a successful no-op by the store.
type Membership struct {
	UserGroupID uint64 `gorm:"primaryKey;autoIncrement:false"` // User group.
	UserID      uint64 `gorm:"primaryKey;autoIncrement:false"` // Member user.
}

// TableName keeps the legacy join-table name.
func (Membership) TableName() string { return "user_group_members" }

// Grant allows a user group's members to access a URL group's paths
// (many-to-many). Duplicate inserts are treated as a successful no-op.
type Grant struct {
	UserGroupID uint64 `gorm:"primaryKey;autoIncrement:false"` // Granted user group.
	UrlGroupID  uint64 `gorm:"primaryKey;autoIncrement:false"` // Target URL group.
}

// TableName keeps the legacy join-table name.
func (Grant) TableName() string { return "user_group_url_group_grants" }
