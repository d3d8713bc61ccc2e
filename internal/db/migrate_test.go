package db

import (
	"path/filepath"
	"testing"

	"github.com/authgate-dev/authgate/internal/models"
)

func TestMigrate_SeedsProtectedRows(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "migrate-test.db")
	conn, err := Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	var internal models.UserGroup
	if errFind := conn.Where("name = ?", InternalUserGroupName).First(&internal).Error; errFind != nil {
		t.Fatalf("internal user group missing: %v", errFind)
	}
	if !internal.Protected {
		t.Fatalf("internal user group must be protected")
	}

	for _, name := range []string{EveryoneGroupName, AuthenticatedGroupName} {
		var group models.UrlGroup
		if errFind := conn.Where("name = ? AND app_id IS NULL", name).First(&group).Error; errFind != nil {
			t.Fatalf("url group %q missing: %v", name, errFind)
		}
		if !group.Protected {
			t.Fatalf("url group %q must be protected", name)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "migrate-test.db")
	conn, err := Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("first migrate: %v", errMigrate)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("second migrate: %v", errMigrate)
	}

	var count int64
	if errCount := conn.Model(&models.UserGroup{}).Where("name = ?", InternalUserGroupName).Count(&count).Error; errCount != nil {
		t.Fatalf("count internal groups: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected one internal user group, got %d", count)
	}
	if errCount := conn.Model(&models.UrlGroup{}).Where("name = ?", EveryoneGroupName).Count(&count).Error; errCount != nil {
		t.Fatalf("count Everyone groups: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected one Everyone group, got %d", count)
	}
}

func TestMigrate_ReprotectsClearedFlag(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "migrate-test.db")
	conn, err := Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	if errClear := conn.Model(&models.UserGroup{}).
		Where("name = ?", InternalUserGroupName).
		Update("protected", false).Error; errClear != nil {
		t.Fatalf("clear flag: %v", errClear)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("re-migrate: %v", errMigrate)
	}

	var group models.UserGroup
	if errFind := conn.Where("name = ?", InternalUserGroupName).First(&group).Error; errFind != nil {
		t.Fatalf("find internal group: %v", errFind)
	}
	if !group.Protected {
		t.Fatalf("expected protected flag restored")
	}
}

func TestMigrate_SeedsDefaultSettings(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "migrate-test.db")
	conn, err := Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	var settings []models.Setting
	if errFind := conn.Find(&settings).Error; errFind != nil {
		t.Fatalf("find settings: %v", errFind)
	}
	if len(settings) == 0 {
		t.Fatalf("expected default settings rows")
	}
}
