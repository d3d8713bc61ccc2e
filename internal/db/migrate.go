package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/authgate-dev/authgate/internal/models"
	internalsettings "github.com/authgate-dev/authgate/internal/settings"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Names of the protected rows seeded at process start. Members of the
// internal user group bypass every per-URL check; the two URL groups carry
// the public and authenticated-only policies.
const (
	InternalUserGroupName  = "Internal User Group"
	EveryoneGroupName      = "Everyone"
	AuthenticatedGroupName = "Authenticated"
)

// Migrate applies the schema and seeds the protected system rows. It is
// idempotent; two instances bootstrapping concurrently is benign.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.Application{},
		&models.User{},
		&models.UserGroup{},
		&models.UrlGroup{},
		&models.Url{},
		&models.Membership{},
		&models.Grant{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	if errSeed := ensureProtectedGroups(conn); errSeed != nil {
		return errSeed
	}
	return ensureDefaultSettings(conn)
}

// ensureDefaultSettings seeds missing runtime settings with defaults.
func ensureDefaultSettings(conn *gorm.DB) error {
	if errEnsure := ensureStringSetting(conn, internalsettings.SiteNameKey, internalsettings.DefaultSiteName); errEnsure != nil {
		return errEnsure
	}
	return ensureIntSetting(conn, internalsettings.RateLimitKey, internalsettings.DefaultRateLimit)
}

// ensureIntSetting ensures an integer setting exists and defaults when empty.
func ensureIntSetting(conn *gorm.DB, key string, value int) error {
	payload, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal %s setting: %w", key, errMarshal)
	}
	return ensureRawSetting(conn, key, payload)
}

// ensureStringSetting ensures a string setting exists and defaults when empty.
func ensureStringSetting(conn *gorm.DB, key, value string) error {
	payload, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal %s setting: %w", key, errMarshal)
	}
	return ensureRawSetting(conn, key, payload)
}

func ensureRawSetting(conn *gorm.DB, key string, value []byte) error {
	var existing models.Setting
	if errFind := conn.Where("key = ?", key).First(&existing).Error; errFind == nil {
		trimmed := strings.TrimSpace(string(existing.Value))
		if trimmed == "" || trimmed == "null" {
			if errUpdate := conn.Model(&existing).Update("value", datatypes.JSON(value)).Error; errUpdate != nil {
				return fmt.Errorf("db: update %s setting: %w", key, errUpdate)
			}
		}
		return nil
	} else if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: query %s setting: %w", key, errFind)
	}

	setting := models.Setting{Key: key, Value: datatypes.JSON(value)}
	if errCreate := conn.Create(&setting).Error; errCreate != nil {
		return fmt.Errorf("db: create %s setting: %w", key, errCreate)
	}
	return nil
}

// ensureProtectedGroups seeds the three protected rows if absent and
// re-protects existing rows whose flag was cleared.
func ensureProtectedGroups(conn *gorm.DB) error {
	if errUser := ensureProtectedUserGroup(conn, InternalUserGroupName); errUser != nil {
		return errUser
	}
	for _, name := range []string{EveryoneGroupName, AuthenticatedGroupName} {
		if errURL := ensureProtectedUrlGroup(conn, name); errURL != nil {
			return errURL
		}
	}
	return nil
}

func ensureProtectedUserGroup(conn *gorm.DB, name string) error {
	var existing models.UserGroup
	errFind := conn.Where("name = ?", name).First(&existing).Error
	if errFind == nil {
		if existing.Protected {
			return nil
		}
		if errUpdate := conn.Model(&existing).Update("protected", true).Error; errUpdate != nil {
			return fmt.Errorf("db: protect user group %q: %w", name, errUpdate)
		}
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: query user group %q: %w", name, errFind)
	}
	group := models.UserGroup{Name: name, Protected: true}
	if errCreate := conn.Create(&group).Error; errCreate != nil {
		return fmt.Errorf("db: create user group %q: %w", name, errCreate)
	}
	return nil
}

func ensureProtectedUrlGroup(conn *gorm.DB, name string) error {
	// Bootstrap groups are global: app_id stays NULL.
	var existing models.UrlGroup
	errFind := conn.Where("name = ? AND app_id IS NULL", name).First(&existing).Error
	if errFind == nil {
		if existing.Protected {
			return nil
		}
		if errUpdate := conn.Model(&existing).Update("protected", true).Error; errUpdate != nil {
			return fmt.Errorf("db: protect url group %q: %w", name, errUpdate)
		}
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: query url group %q: %w", name, errFind)
	}
	group := models.UrlGroup{Name: name, Protected: true}
	if errCreate := conn.Create(&group).Error; errCreate != nil {
		return fmt.Errorf("db: create url group %q: %w", name, errCreate)
	}
	return nil
}
