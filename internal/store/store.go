// Package store implements the relational data store for tenants, groups,
// memberships, grants, and URL entries.
package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error taxonomy shared by the admin API handlers.
var (
	// ErrNotFound marks a missing entity where one was required.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict marks a unique-constraint violation on create or update.
	ErrConflict = errors.New("store: conflict")
	// ErrProtected marks an attempt to delete a protected system group.
	ErrProtected = errors.New("store: protected entity")
	// ErrLinked marks an attempt to delete a group that still has grants.
	ErrLinked = errors.New("store: entity has grants")
)

// Store provides query and mutation operations over the six relations. All
// writes are transactional; the decision path never mutates.
type Store struct {
	conn *gorm.DB
}

// New constructs a Store over the given connection.
func New(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

// pgUniqueViolation is the PostgreSQL error code for unique violations.
const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a duplicate-key error on any
// supported dialect.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// glebarez/sqlite surfaces constraint failures as plain errors.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
