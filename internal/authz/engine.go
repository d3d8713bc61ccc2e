// Package authz implements the authorization decision engine: classifying
// request URLs, resolving the owning tenant, and evaluating the ordered
// group-resolution rule chain against the data store.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/authgate-dev/authgate/internal/db"
	"github.com/authgate-dev/authgate/internal/models"
	"github.com/authgate-dev/authgate/internal/sanitize"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Engine evaluates authorization decisions. It is stateless per call; all
// state lives in the database, so concurrent evaluations are safe.
type Engine struct {
	conn       *gorm.DB
	classifier *Classifier
}

// NewEngine constructs an Engine over the given connection and classifier.
func NewEngine(conn *gorm.DB, classifier *Classifier) *Engine {
	return &Engine{conn: conn, classifier: classifier}
}

// Decide reports whether the identity may access the URL. The chain is
// evaluated in order, first match wins: asset bypass, tenant resolution,
// "Everyone", "Authenticated", "Internal User Group" membership, then the
// membership-grant join. Any store error yields (false, err) so the caller
// fails closed.
func (e *Engine) Decide(ctx context.Context, identity, rawURL string) (bool, error) {
	_, host, path := ParseFullURL(rawURL)

	if e.classifier.IsWebAsset(path) {
		log.WithField("path", path).Debug("authz: web asset, allowing")
		return true, nil
	}

	if host != "" {
		app, errApp := e.applicationByHost(ctx, host)
		if errApp != nil {
			return false, errApp
		}
		if app == nil {
			// A host-qualified URL the proxy cannot map to a tenant is a
			// misconfiguration; fail closed.
			log.WithField("host", host).Warn("authz: no application for host, denying")
			return false, nil
		}
		return e.decideScoped(ctx, identity, path, &app.ID)
	}

	// Bare path: legacy global-scope evaluation over un-filtered URL groups.
	return e.decideScoped(ctx, identity, path, nil)
}

// applicationByHost resolves the tenant by exact host match. A missing row
// is not an error; it returns (nil, nil).
func (e *Engine) applicationByHost(ctx context.Context, host string) (*models.Application, error) {
	var app models.Application
	errFind := e.conn.WithContext(ctx).Where("host = ?", host).First(&app).Error
	if errFind == nil {
		return &app, nil
	}
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("authz: resolve host: %w", errFind)
}

// decideScoped runs rules 3-6 of the chain. A non-nil appID restricts every
// URL-group lookup to that tenant; nil leaves lookups unscoped.
func (e *Engine) decideScoped(ctx context.Context, identity, path string, appID *uint64) (bool, error) {
	public, errPublic := e.pathInProtectedUrlGroup(ctx, db.EveryoneGroupName, path, appID)
	if errPublic != nil {
		return false, errPublic
	}
	if public {
		log.WithField("path", path).Debug("authz: path in Everyone group, allowing")
		return true, nil
	}

	authenticated, errAuthed := e.pathInProtectedUrlGroup(ctx, db.AuthenticatedGroupName, path, appID)
	if errAuthed != nil {
		return false, errAuthed
	}
	if authenticated && identity != "" {
		log.WithFields(log.Fields{
			"path":     path,
			"identity": sanitize.Email(identity),
		}).Debug("authz: path in Authenticated group, allowing")
		return true, nil
	}

	if identity != "" {
		internal, errInternal := e.isInternalUser(ctx, identity)
		if errInternal != nil {
			return false, errInternal
		}
		if internal {
			log.WithField("identity", sanitize.Email(identity)).Debug("authz: internal user, allowing")
			return true, nil
		}

		granted, errGrant := e.hasGrantedPath(ctx, identity, path, appID)
		if errGrant != nil {
			return false, errGrant
		}
		if granted {
			log.WithFields(log.Fields{
				"path":     path,
				"identity": sanitize.Email(identity),
			}).Debug("authz: grant chain matched, allowing")
			return true, nil
		}
	}

	log.WithFields(log.Fields{
		"path":     path,
		"identity": sanitize.Email(identity),
	}).Info("authz: no matching rule, denying")
	return false, nil
}

// pathInProtectedUrlGroup reports whether the protected URL group with the
// given name contains the path, optionally scoped to one application.
func (e *Engine) pathInProtectedUrlGroup(ctx context.Context, name, path string, appID *uint64) (bool, error) {
	q := e.conn.WithContext(ctx).Model(&models.UrlGroup{}).
		Joins("JOIN urls ON urls.url_group_id = url_groups.id").
		Where("url_groups.name = ? AND url_groups.protected = ? AND urls.path = ?", name, true, path)
	if appID != nil {
		q = q.Where("url_groups.app_id = ?", *appID)
	}
	var count int64
	if errCount := q.Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("authz: query %s group: %w", name, errCount)
	}
	return count > 0, nil
}

// isInternalUser reports whether the identity belongs to the protected
// internal user group. The superuser override is never tenant-scoped.
func (e *Engine) isInternalUser(ctx context.Context, identity string) (bool, error) {
	var count int64
	errCount := e.conn.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN user_group_members ON user_group_members.user_id = users.id").
		Joins("JOIN user_groups ON user_groups.id = user_group_members.user_group_id").
		Where("users.email = ? AND user_groups.name = ? AND user_groups.protected = ?",
			identity, db.InternalUserGroupName, true).
		Count(&count).Error
	if errCount != nil {
		return false, fmt.Errorf("authz: query internal group: %w", errCount)
	}
	return count > 0, nil
}

// hasGrantedPath reports whether a join path exists from the identity through
// a membership and a grant to a URL group containing the path.
func (e *Engine) hasGrantedPath(ctx context.Context, identity, path string, appID *uint64) (bool, error) {
	q := e.conn.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN user_group_members ON user_group_members.user_id = users.id").
		Joins("JOIN user_group_url_group_grants ON user_group_url_group_grants.user_group_id = user_group_members.user_group_id").
		Joins("JOIN url_groups ON url_groups.id = user_group_url_group_grants.url_group_id").
		Joins("JOIN urls ON urls.url_group_id = url_groups.id").
		Where("users.email = ? AND urls.path = ?", identity, path)
	if appID != nil {
		q = q.Where("url_groups.app_id = ?", *appID)
	}
	var count int64
	if errCount := q.Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("authz: query grant chain: %w", errCount)
	}
	return count > 0, nil
}
