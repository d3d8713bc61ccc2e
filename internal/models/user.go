package models

import "time"

// User is an identity known to the gateway, created lazily on the first
// group-membership grant.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email string `gorm:"type:text;not null;uniqueIndex"` // Verified email supplied by the identity provider.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
