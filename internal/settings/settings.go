// Package settings exposes a process-wide snapshot of the mutable runtime
// configuration stored in the settings table.
package settings

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/authgate-dev/authgate/internal/models"
	"gorm.io/gorm"
)

var snapshot atomic.Pointer[map[string]json.RawMessage]

// Reload replaces the snapshot with the current settings rows. It is called
// at boot and after every settings mutation.
func Reload(conn *gorm.DB) error {
	var rows []models.Setting
	if errFind := conn.Find(&rows).Error; errFind != nil {
		return fmt.Errorf("settings: load: %w", errFind)
	}
	next := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		next[row.Key] = json.RawMessage(row.Value)
	}
	snapshot.Store(&next)
	return nil
}

// DBConfigValue returns the raw JSON value for a settings key from the
// current snapshot.
func DBConfigValue(key string) (json.RawMessage, bool) {
	current := snapshot.Load()
	if current == nil {
		return nil, false
	}
	value, ok := (*current)[key]
	return value, ok
}
