package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/authgate-dev/authgate/internal/db"
	"github.com/authgate-dev/authgate/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateUserGroup creates a user group. Duplicate names yield ErrConflict.
func (s *Store) CreateUserGroup(ctx context.Context, name string) (*models.UserGroup, error) {
	group := models.UserGroup{Name: strings.TrimSpace(name)}
	if errCreate := s.conn.WithContext(ctx).Create(&group).Error; errCreate != nil {
		if isUniqueViolation(errCreate) {
			return nil, fmt.Errorf("user group %q: %w", group.Name, ErrConflict)
		}
		return nil, fmt.Errorf("store: create user group: %w", errCreate)
	}
	return &group, nil
}

// GetUserGroup returns a user group by ID.
func (s *Store) GetUserGroup(ctx context.Context, id uint64) (*models.UserGroup, error) {
	var group models.UserGroup
	if errFind := s.conn.WithContext(ctx).First(&group, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get user group: %w", errFind)
	}
	return &group, nil
}

// ListUserGroups returns all user groups ordered by name.
func (s *Store) ListUserGroups(ctx context.Context) ([]models.UserGroup, error) {
	var groups []models.UserGroup
	if errFind := s.conn.WithContext(ctx).Order("name").Find(&groups).Error; errFind != nil {
		return nil, fmt.Errorf("store: list user groups: %w", errFind)
	}
	return groups, nil
}

// RenameUserGroup updates a user group's name. Protected groups cannot be
// renamed; duplicate names yield ErrConflict.
func (s *Store) RenameUserGroup(ctx context.Context, id uint64, name string) (*models.UserGroup, error) {
	var group models.UserGroup
	errTx := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errFind := tx.First(&group, id).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errFind
		}
		if group.Protected {
			return ErrProtected
		}
		if errUpdate := tx.Model(&group).Update("name", strings.TrimSpace(name)).Error; errUpdate != nil {
			if isUniqueViolation(errUpdate) {
				return ErrConflict
			}
			return errUpdate
		}
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, ErrNotFound) || errors.Is(errTx, ErrProtected) || errors.Is(errTx, ErrConflict) {
			return nil, errTx
		}
		return nil, fmt.Errorf("store: rename user group: %w", errTx)
	}
	return &group, nil
}

// DeleteUserGroup removes a user group and its memberships. Protected groups
// return ErrProtected; groups still holding grants return ErrLinked.
func (s *Store) DeleteUserGroup(ctx context.Context, id uint64) error {
	errTx := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.UserGroup
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
		if errCount := tx.Model(&models.Grant{}).Where("user_group_id = ?", id).Count(&grants).Error; errCount != nil {
			return errCount
		}
		if grants > 0 {
			return ErrLinked
		}
		if errMembers := tx.Where("user_group_id = ?", id).Delete(&models.Membership{}).Error; errMembers != nil {
			return errMembers
		}
		return tx.Delete(&group).Error
	})
	if errTx != nil {
		if errors.Is(errTx, ErrNotFound) || errors.Is(errTx, ErrProtected) || errors.Is(errTx, ErrLinked) {
			return errTx
		}
		return fmt.Errorf("store: delete user group: %w", errTx)
	}
	return nil
}

// EnsureUser returns the user with the given email, creating it on first
// use. A concurrent create is treated as success and re-read.
func (s *Store) EnsureUser(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("store: empty email: %w", ErrConflict)
	}
	var user models.User
	errFind := s.conn.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errFind == nil {
		return &user, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store: get user: %w", errFind)
	}

	user = models.User{Email: email}
	if errCreate := s.conn.WithContext(ctx).Create(&user).Error; errCreate != nil {
		if isUniqueViolation(errCreate) {
			// Lost a benign race; the row exists now.
			if errReread := s.conn.WithContext(ctx).Where("email = ?", email).First(&user).Error; errReread != nil {
				return nil, fmt.Errorf("store: reread user: %w", errReread)
			}
			return &user, nil
		}
		return nil, fmt.Errorf("store: create user: %w", errCreate)
	}
	return &user, nil
}

// GetUserByEmail returns a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if errFind := s.conn.WithContext(ctx).Where("email = ?", email).First(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get user: %w", errFind)
	}
	return &user, nil
}

// ListUsers returns all users ordered by email.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if errFind := s.conn.WithContext(ctx).Order("email").Find(&users).Error; errFind != nil {
		return nil, fmt.Errorf("store: list users: %w", errFind)
	}
	return users, nil
}

// SearchUsers returns users whose email contains the query, case-insensitive,
// ordered by email.
func (s *Store) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListUsers(ctx)
	}
	pattern := db.NormalizeLikePattern(s.conn, "%"+query+"%")
	var users []models.User
	errFind := s.conn.WithContext(ctx).
		Where(db.CaseInsensitiveLikeExpr(s.conn, "email"), pattern).
		Order("email").
		Find(&users).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: search users: %w", errFind)
	}
	return users, nil
}

// DeleteUser removes a user and its memberships.
func (s *Store) DeleteUser(ctx context.Context, id uint64) error {
	errTx := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errMembers := tx.Where("user_id = ?", id).Delete(&models.Membership{}).Error; errMembers != nil {
			return errMembers
		}
		res := tx.Delete(&models.User{}, id)
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
		return fmt.Errorf("store: delete user: %w", errTx)
	}
	return nil
}

// AddUserToGroup creates the user if needed and links it to the group.
// Re-adding an existing member is a successful no-op.
func (s *Store) AddUserToGroup(ctx context.Context, groupID uint64, email string) error {
	if _, errGroup := s.GetUserGroup(ctx, groupID); errGroup != nil {
		return errGroup
	}
	user, errUser := s.EnsureUser(ctx, email)
	if errUser != nil {
		return errUser
	}
	membership := models.Membership{UserGroupID: groupID, UserID: user.ID}
	errCreate := s.conn.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&membership).Error
	if errCreate != nil && !isUniqueViolation(errCreate) {
		return fmt.Errorf("store: add membership: %w", errCreate)
	}
	return nil
}

// RemoveUserFromGroup unlinks a user from a group. Removing a non-member is
// ErrNotFound.
func (s *Store) RemoveUserFromGroup(ctx context.Context, groupID uint64, email string) error {
	user, errUser := s.GetUserByEmail(ctx, email)
	if errUser != nil {
		return errUser
	}
	res := s.conn.WithContext(ctx).
		Where("user_group_id = ? AND user_id = ?", groupID, user.ID).
		Delete(&models.Membership{})
	if res.Error != nil {
		return fmt.Errorf("store: remove membership: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListGroupMembers returns the member emails of a group ordered by email.
func (s *Store) ListGroupMembers(ctx context.Context, groupID uint64) ([]string, error) {
	if _, errGroup := s.GetUserGroup(ctx, groupID); errGroup != nil {
		return nil, errGroup
	}
	var emails []string
	errFind := s.conn.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN user_group_members ON user_group_members.user_id = users.id").
		Where("user_group_members.user_group_id = ?", groupID).
		Order("users.email").
		Pluck("users.email", &emails).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list members: %w", errFind)
	}
	return emails, nil
}
