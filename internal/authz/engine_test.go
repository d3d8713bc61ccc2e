package authz

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/authgate-dev/authgate/internal/db"
	"github.com/authgate-dev/authgate/internal/models"
	"github.com/authgate-dev/authgate/internal/store"
	"gorm.io/gorm"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store, *gorm.DB) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "authz-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	classifier := NewClassifier([]string{"css", "js", "png"})
	return NewEngine(conn, classifier), store.New(conn), conn
}

func mustDecide(t *testing.T, engine *Engine, identity, rawURL string) bool {
	t.Helper()
	allowed, err := engine.Decide(context.Background(), identity, rawURL)
	if err != nil {
		t.Fatalf("Decide(%q, %q): %v", identity, rawURL, err)
	}
	return allowed
}

func TestDecide_AssetBypass(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	if !mustDecide(t, engine, "", "/static/app.css") {
		t.Fatalf("expected asset path allowed for anonymous user")
	}
	if !mustDecide(t, engine, "", "https://unknown.example.com/static/app.js") {
		t.Fatalf("expected asset bypass to precede tenant resolution")
	}
	if mustDecide(t, engine, "", "/static/app") {
		t.Fatalf("expected non-asset path denied for anonymous user")
	}
}

func TestDecide_EveryoneGroup(t *testing.T) {
	engine, _, conn := newTestEngine(t)
	ctx := context.Background()

	addUrlToNamedGroup(t, conn, db.EveryoneGroupName, nil, "/public")

	if !mustDecide(t, engine, "", "/public") {
		t.Fatalf("expected Everyone path allowed for anonymous user")
	}
	allowed, err := engine.Decide(ctx, "", "/private")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if allowed {
		t.Fatalf("expected unlisted path denied for anonymous user")
	}
}

func TestDecide_AuthenticatedGroup(t *testing.T) {
	engine, _, conn := newTestEngine(t)

	addUrlToNamedGroup(t, conn, db.AuthenticatedGroupName, nil, "/profile")

	if mustDecide(t, engine, "", "/profile") {
		t.Fatalf("expected Authenticated path denied without identity")
	}
	if !mustDecide(t, engine, "carol@example.com", "/profile") {
		t.Fatalf("expected Authenticated path allowed with identity")
	}
}

func TestDecide_InternalUserSuperuser(t *testing.T) {
	engine, st, conn := newTestEngine(t)
	ctx := context.Background()

	var internal models.UserGroup
	if errFind := conn.Where("name = ?", db.InternalUserGroupName).First(&internal).Error; errFind != nil {
		t.Fatalf("find internal group: %v", errFind)
	}
	if errAdd := st.AddUserToGroup(ctx, internal.ID, "ops@example.com"); errAdd != nil {
		t.Fatalf("add internal member: %v", errAdd)
	}

	if !mustDecide(t, engine, "ops@example.com", "/anything/at/all") {
		t.Fatalf("expected internal user allowed on arbitrary path")
	}
	if mustDecide(t, engine, "outsider@example.com", "/anything/at/all") {
		t.Fatalf("expected non-member denied")
	}
}

func TestDecide_GrantChainAndTenantIsolation(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	app1, errApp := st.CreateApplication(ctx, "App One", "app1.example.com", "")
	if errApp != nil {
		t.Fatalf("create app1: %v", errApp)
	}
	app2, errApp2 := st.CreateApplication(ctx, "App Two", "app2.example.com", "")
	if errApp2 != nil {
		t.Fatalf("create app2: %v", errApp2)
	}

	devs, errGroup := st.CreateUserGroup(ctx, "developers")
	if errGroup != nil {
		t.Fatalf("create user group: %v", errGroup)
	}
	tools, errUrlGroup := st.CreateUrlGroup(ctx, "tools", &app1.ID)
	if errUrlGroup != nil {
		t.Fatalf("create url group: %v", errUrlGroup)
	}
	if _, errUrl := st.AddUrlToGroup(ctx, tools.ID, "/tools"); errUrl != nil {
		t.Fatalf("add url: %v", errUrl)
	}
	if errMember := st.AddUserToGroup(ctx, devs.ID, "alice@example.com"); errMember != nil {
		t.Fatalf("add member: %v", errMember)
	}
	if errLink := st.LinkGroups(ctx, devs.ID, tools.ID); errLink != nil {
		t.Fatalf("link groups: %v", errLink)
	}

	if !mustDecide(t, engine, "alice@example.com", "https://app1.example.com/tools") {
		t.Fatalf("expected alice allowed via membership-grant chain")
	}
	if mustDecide(t, engine, "bob@example.com", "https://app1.example.com/tools") {
		t.Fatalf("expected bob denied without membership")
	}
	if mustDecide(t, engine, "alice@example.com", "https://app1.example.com/other") {
		t.Fatalf("expected alice denied on ungranted path")
	}
	// The grant is scoped to app1; the same path under app2 must not match.
	if mustDecide(t, engine, "alice@example.com", "https://app2.example.com/tools") {
		t.Fatalf("expected grant not to leak into app %d", app2.ID)
	}
}

func TestDecide_UnmatchedHostDenies(t *testing.T) {
	engine, st, conn := newTestEngine(t)
	ctx := context.Background()

	// Even an internal superuser is denied when the host maps to no tenant.
	var internal models.UserGroup
	if errFind := conn.Where("name = ?", db.InternalUserGroupName).First(&internal).Error; errFind != nil {
		t.Fatalf("find internal group: %v", errFind)
	}
	if errAdd := st.AddUserToGroup(ctx, internal.ID, "ops@example.com"); errAdd != nil {
		t.Fatalf("add internal member: %v", errAdd)
	}

	if mustDecide(t, engine, "ops@example.com", "https://nowhere.example.com/x") {
		t.Fatalf("expected unknown host to deny")
	}
}

func TestDecide_BarePathSearchesAllScopes(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	app, errApp := st.CreateApplication(ctx, "App", "app.example.com", "")
	if errApp != nil {
		t.Fatalf("create app: %v", errApp)
	}
	devs, errGroup := st.CreateUserGroup(ctx, "developers")
	if errGroup != nil {
		t.Fatalf("create user group: %v", errGroup)
	}
	tools, errUrlGroup := st.CreateUrlGroup(ctx, "tools", &app.ID)
	if errUrlGroup != nil {
		t.Fatalf("create url group: %v", errUrlGroup)
	}
	if _, errUrl := st.AddUrlToGroup(ctx, tools.ID, "/tools"); errUrl != nil {
		t.Fatalf("add url: %v", errUrl)
	}
	if errMember := st.AddUserToGroup(ctx, devs.ID, "alice@example.com"); errMember != nil {
		t.Fatalf("add member: %v", errMember)
	}
	if errLink := st.LinkGroups(ctx, devs.ID, tools.ID); errLink != nil {
		t.Fatalf("link groups: %v", errLink)
	}

	// Without a host the lookup is unscoped, so app-bound groups still match.
	if !mustDecide(t, engine, "alice@example.com", "/tools") {
		t.Fatalf("expected bare path to match app-scoped grant")
	}
}

func TestDecide_TenantScopedEveryoneGroup(t *testing.T) {
	engine, st, conn := newTestEngine(t)
	ctx := context.Background()

	app, errApp := st.CreateApplication(ctx, "App", "app.example.com", "")
	if errApp != nil {
		t.Fatalf("create app: %v", errApp)
	}
	addUrlToNamedGroup(t, conn, db.EveryoneGroupName, &app.ID, "/landing")

	if !mustDecide(t, engine, "", "https://app.example.com/landing") {
		t.Fatalf("expected tenant Everyone path allowed for anonymous user")
	}
	// The global Everyone group does not apply inside a tenant scope.
	addUrlToNamedGroup(t, conn, db.EveryoneGroupName, nil, "/global-only")
	if mustDecide(t, engine, "", "https://app.example.com/global-only") {
		t.Fatalf("expected global Everyone path not to apply under a tenant")
	}
}

// addUrlToNamedGroup registers a path under a protected policy group,
// creating a tenant-scoped copy of the group when appID is set.
func addUrlToNamedGroup(t *testing.T, conn *gorm.DB, name string, appID *uint64, path string) {
	t.Helper()
	var group models.UrlGroup
	q := conn.Where("name = ?", name)
	if appID == nil {
		q = q.Where("app_id IS NULL")
	} else {
		q = q.Where("app_id = ?", *appID)
	}
	if errFind := q.First(&group).Error; errFind != nil {
		group = models.UrlGroup{Name: name, AppID: appID, Protected: true}
		if errCreate := conn.Create(&group).Error; errCreate != nil {
			t.Fatalf("create %s group: %v", name, errCreate)
		}
	}
	u := models.Url{Path: path, UrlGroupID: group.ID}
	if errCreate := conn.Create(&u).Error; errCreate != nil {
		t.Fatalf("add url %q: %v", path, errCreate)
	}
}
