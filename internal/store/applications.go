package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/authgate-dev/authgate/internal/models"
	"gorm.io/gorm"
)

// ApplicationSummary pairs an application with its URL group count.
type ApplicationSummary struct {
	models.Application
	UrlGroupsCount int64
}

// CreateApplication creates a tenant. Duplicate name or host yields
// ErrConflict with nothing persisted.
func (s *Store) CreateApplication(ctx context.Context, name, host, description string) (*models.Application, error) {
	app := models.Application{
		Name:        strings.TrimSpace(name),
		Host:        strings.TrimSpace(host),
		Description: strings.TrimSpace(description),
	}
	if errCreate := s.conn.WithContext(ctx).Create(&app).Error; errCreate != nil {
		if isUniqueViolation(errCreate) {
			return nil, fmt.Errorf("application %q / host %q: %w", app.Name, app.Host, ErrConflict)
		}
		return nil, fmt.Errorf("store: create application: %w", errCreate)
	}
	return &app, nil
}

// GetApplication returns an application by ID.
func (s *Store) GetApplication(ctx context.Context, id uint64) (*models.Application, error) {
	var app models.Application
	if errFind := s.conn.WithContext(ctx).First(&app, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get application: %w", errFind)
	}
	return &app, nil
}

// GetApplicationByHost returns the tenant owning the host, or ErrNotFound.
func (s *Store) GetApplicationByHost(ctx context.Context, host string) (*models.Application, error) {
	var app models.Application
	if errFind := s.conn.WithContext(ctx).Where("host = ?", host).First(&app).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get application by host: %w", errFind)
	}
	return &app, nil
}

// ListApplications returns all tenants ordered by name, each with the number
// of URL groups scoped to it.
func (s *Store) ListApplications(ctx context.Context) ([]ApplicationSummary, error) {
	var rows []ApplicationSummary
	errFind := s.conn.WithContext(ctx).Model(&models.Application{}).
		Select("applications.*, COUNT(url_groups.id) AS url_groups_count").
		Joins("LEFT JOIN url_groups ON url_groups.app_id = applications.id").
		Group("applications.id").
		Order("applications.name").
		Find(&rows).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list applications: %w", errFind)
	}
	return rows, nil
}

// UpdateApplication applies the non-nil fields. Duplicate name or host rolls
// back with ErrConflict.
func (s *Store) UpdateApplication(ctx context.Context, id uint64, name, host, description *string) (*models.Application, error) {
	updates := map[string]any{}
	if name != nil {
		updates["name"] = strings.TrimSpace(*name)
	}
	if host != nil {
		updates["host"] = strings.TrimSpace(*host)
	}
	if description != nil {
		updates["description"] = strings.TrimSpace(*description)
	}

	var app models.Application
	errTx := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errFind := tx.First(&app, id).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errFind
		}
		if len(updates) == 0 {
			return nil
		}
		if errUpdate := tx.Model(&app).Updates(updates).Error; errUpdate != nil {
			if isUniqueViolation(errUpdate) {
				return ErrConflict
			}
			return errUpdate
		}
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, ErrNotFound) || errors.Is(errTx, ErrConflict) {
			return nil, errTx
		}
		return nil, fmt.Errorf("store: update application: %w", errTx)
	}
	return &app, nil
}

// DeleteApplication removes a tenant and cascades to its URL groups, their
// URLs, and any grants referencing them, all in one transaction.
func (s *Store) DeleteApplication(ctx context.Context, id uint64) error {
	errTx := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		groupIDs := func() *gorm.DB {
			return tx.Model(&models.UrlGroup{}).Select("id").Where("app_id = ?", id)
		}
		if errGrants := tx.Where("url_group_id IN (?)", groupIDs()).Delete(&models.Grant{}).Error; errGrants != nil {
			return errGrants
		}
		if errUrls := tx.Where("url_group_id IN (?)", groupIDs()).Delete(&models.Url{}).Error; errUrls != nil {
			return errUrls
		}
		if errGroups := tx.Where("app_id = ?", id).Delete(&models.UrlGroup{}).Error; errGroups != nil {
			return errGroups
		}
		res := tx.Delete(&models.Application{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("store: delete application: %w", errTx)
	}
	return nil
}
