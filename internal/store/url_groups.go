package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/authgate-dev/authgate/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateUrlGroup creates a URL group, optionally scoped to an application.
// The name must be unique within the application (or among global groups).
func (s *Store) CreateUrlGroup(ctx context.Context, name string, appID *uint64) (*models.UrlGroup, error) {
	if appID != nil {
		if _, errApp := s.GetApplication(ctx, *appID); errApp != nil {
			return nil, errApp
		}
	}
	group := models.UrlGroup{Name: strings.TrimSpace(name), AppID: appID}
	if errCreate := s.conn.WithContext(ctx).Create(&group).Error; errCreate != nil {
		if isUniqueViolation(errCreate) {
			return nil, fmt.Errorf("url group %q: %w", group.Name, ErrConflict)
		}
		return nil, fmt.Errorf("store: create url group: %w", errCreate)
	}
	return &group, nil
}

// GetUrlGroup returns a URL group by ID.
func (s *Store) GetUrlGroup(ctx context.Context, id uint64) (*models.UrlGroup, error) {
	var group models.UrlGroup
	if errFind := s.conn.WithContext(ctx).First(&group, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get url group: %w", errFind)
	}
	return &group, nil
}

// ListUrlGroups returns URL groups ordered by name. A nil appID lists the
// global (un-tenanted) groups.
func (s *Store) ListUrlGroups(ctx context.Context, appID *uint64) ([]models.UrlGroup, error) {
	q := s.conn.WithContext(ctx).Order("name")
	if appID == nil {
		q = q.Where("app_id IS NULL")
	} else {
		q = q.Where("app_id = ?", *appID)
	}
	var groups []models.UrlGroup
	if errFind := q.Find(&groups).Error; errFind != nil {
		return nil, fmt.Errorf("store: list url groups: %w", errFind)
	}
	return groups, nil
}

// DeleteUrlGroup removes a URL group and its URLs. Protected groups return
// ErrProtected; groups still referenced by grants return ErrLinked.
func (s *Store) DeleteUrlGroup(ctx context.Context, id uint64) error {
	errTx := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.UrlGroup
		if errFind := tx.First(&group, id).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errFind
		}
		if group.Protected {
			return ErrProtected
		}
		var grants int64
		if errCount := tx.Model(&models.Grant{}).Where("url_group_id = ?", id).Count(&grants).Error; errCount != nil {
			return errCount
		}
		if grants > 0 {
			return ErrLinked
		}
		if errUrls := tx.Where("url_group_id = ?", id).Delete(&models.Url{}).Error; errUrls != nil {
			return errUrls
		}
		return tx.Delete(&group).Error
	})
	if errTx != nil {
		if errors.Is(errTx, ErrNotFound) || errors.Is(errTx, ErrProtected) || errors.Is(errTx, ErrLinked) {
			return errTx
		}
		return fmt.Errorf("store: delete url group: %w", errTx)
	}
	return nil
}

// AddUrlToGroup adds a path to a URL group. A duplicate path within the
// group yields ErrConflict.
func (s *Store) AddUrlToGroup(ctx context.Context, groupID uint64, path string) (*models.Url, error) {
	if _, errGroup := s.GetUrlGroup(ctx, groupID); errGroup != nil {
		return nil, errGroup
	}
	entry := models.Url{Path: strings.TrimSpace(path), UrlGroupID: groupID}
	if errCreate := s.conn.WithContext(ctx).Create(&entry).Error; errCreate != nil {
		if isUniqueViolation(errCreate) {
			return nil, fmt.Errorf("url %q: %w", entry.Path, ErrConflict)
		}
		return nil, fmt.Errorf("store: add url: %w", errCreate)
	}
	return &entry, nil
}

// RemoveUrlFromGroup deletes a path from a URL group.
func (s *Store) RemoveUrlFromGroup(ctx context.Context, groupID uint64, path string) error {
	res := s.conn.WithContext(ctx).
		Where("url_group_id = ? AND path = ?", groupID, strings.TrimSpace(path)).
		Delete(&models.Url{})
	if res.Error != nil {
		return fmt.Errorf("store: remove url: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUrls returns the paths of a URL group ordered by path.
func (s *Store) ListUrls(ctx context.Context, groupID uint64) ([]models.Url, error) {
	if _, errGroup := s.GetUrlGroup(ctx, groupID); errGroup != nil {
		return nil, errGroup
	}
	var urls []models.Url
	errFind := s.conn.WithContext(ctx).
		Where("url_group_id = ?", groupID).
		Order("path").
		Find(&urls).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list urls: %w", errFind)
	}
	return urls, nil
}

// LinkGroups grants a user group access to a URL group. Re-linking an
// existing grant is a successful no-op.
func (s *Store) LinkGroups(ctx context.Context, userGroupID, urlGroupID uint64) error {
	if _, errUser := s.GetUserGroup(ctx, userGroupID); errUser != nil {
		return errUser
	}
	if _, errURL := s.GetUrlGroup(ctx, urlGroupID); errURL != nil {
		return errURL
	}
	grant := models.Grant{UserGroupID: userGroupID, UrlGroupID: urlGroupID}
	errCreate := s.conn.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grant).Error
	if errCreate != nil && !isUniqueViolation(errCreate) {
		return fmt.Errorf("store: link groups: %w", errCreate)
	}
	return nil
}

// UnlinkGroups removes a grant between a user group and a URL group.
func (s *Store) UnlinkGroups(ctx context.Context, userGroupID, urlGroupID uint64) error {
	res := s.conn.WithContext(ctx).
		Where("user_group_id = ? AND url_group_id = ?", userGroupID, urlGroupID).
		Delete(&models.Grant{})
	if res.Error != nil {
		return fmt.Errorf("store: unlink groups: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListGrantsForUserGroup returns the URL groups granted to a user group,
// ordered by name.
func (s *Store) ListGrantsForUserGroup(ctx context.Context, userGroupID uint64) ([]models.UrlGroup, error) {
	if _, errGroup := s.GetUserGroup(ctx, userGroupID); errGroup != nil {
		return nil, errGroup
	}
	var groups []models.UrlGroup
	errFind := s.conn.WithContext(ctx).Model(&models.UrlGroup{}).
		Joins("JOIN user_group_url_group_grants ON user_group_url_group_grants.url_group_id = url_groups.id").
		Where("user_group_url_group_grants.user_group_id = ?", userGroupID).
		Order("url_groups.name").
		Find(&groups).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list grants: %w", errFind)
	}
	return groups, nil
}
