package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/authgate-dev/authgate/internal/authz"
	"github.com/authgate-dev/authgate/internal/db"
	"github.com/authgate-dev/authgate/internal/models"
	"github.com/authgate-dev/authgate/internal/ratelimit"
	"github.com/authgate-dev/authgate/internal/store"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T, limit int) (*gin.Engine, *store.Store, *gorm.DB) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "decision-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	engine := authz.NewEngine(conn, authz.NewClassifier([]string{"css", "js"}))
	// A fixed clock keeps the window tests deterministic.
	now := time.Unix(1700000000, 0)
	limiter := ratelimit.NewManager(func() ratelimit.SettingsConfig {
		return ratelimit.SettingsConfig{Limit: limit}
	}, func() time.Time { return now }, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, NewHandler(engine, limiter))
	return router, store.New(conn), conn
}

func postAuthorize(t *testing.T, router *gin.Engine, url, identity string) *httptest.ResponseRecorder {
	t.Helper()
	body, errMarshal := json.Marshal(map[string]string{"url": url, "identity": identity})
	if errMarshal != nil {
		t.Fatalf("marshal body: %v", errMarshal)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/authorize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedPublicPath(t *testing.T, conn *gorm.DB, path string) {
	t.Helper()
	var group models.UrlGroup
	if errFind := conn.Where("name = ? AND app_id IS NULL", db.EveryoneGroupName).First(&group).Error; errFind != nil {
		t.Fatalf("find Everyone group: %v", errFind)
	}
	u := models.Url{Path: path, UrlGroupID: group.ID}
	if errCreate := conn.Create(&u).Error; errCreate != nil {
		t.Fatalf("seed url: %v", errCreate)
	}
}

func TestAuthorize_StatusMapping(t *testing.T) {
	router, _, conn := newTestRouter(t, 0)
	seedPublicPath(t, conn, "/public")

	if rec := postAuthorize(t, router, "/public", ""); rec.Code != http.StatusOK {
		t.Fatalf("public path: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec := postAuthorize(t, router, "/private", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous denial: expected 401, got %d", rec.Code)
	}
	if rec := postAuthorize(t, router, "/private", "alice@example.com"); rec.Code != http.StatusForbidden {
		t.Fatalf("authenticated denial: expected 403, got %d", rec.Code)
	}
	if rec := postAuthorize(t, router, "/static/app.css", ""); rec.Code != http.StatusOK {
		t.Fatalf("asset bypass: expected 200, got %d", rec.Code)
	}
}

func TestAuthorize_ResponseBody(t *testing.T) {
	router, _, conn := newTestRouter(t, 0)
	seedPublicPath(t, conn, "/public")

	rec := postAuthorize(t, router, "/public", "")
	var payload struct {
		Allowed bool `json:"allowed"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &payload); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if !payload.Allowed {
		t.Fatalf("expected allowed=true")
	}
}

func TestAuthorize_BadRequest(t *testing.T) {
	router, _, _ := newTestRouter(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/authorize", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid json: expected 400, got %d", rec.Code)
	}

	if rec := postAuthorize(t, router, "", "alice@example.com"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing url: expected 400, got %d", rec.Code)
	}
}

func TestAuthorize_RateLimited(t *testing.T) {
	router, _, conn := newTestRouter(t, 1)
	seedPublicPath(t, conn, "/public")

	if rec := postAuthorize(t, router, "/public", "alice@example.com"); rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}
	if rec := postAuthorize(t, router, "/public", "alice@example.com"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request in window: expected 429, got %d", rec.Code)
	}
	// A different identity gets its own window.
	if rec := postAuthorize(t, router, "/public", "bob@example.com"); rec.Code != http.StatusOK {
		t.Fatalf("other identity: expected 200, got %d", rec.Code)
	}
}

func TestForward_RebuildsURL(t *testing.T) {
	router, st, _ := newTestRouter(t, 0)
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

	req := httptest.NewRequest(http.MethodGet, "/api/authorize/forward", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "app.example.com")
	req.Header.Set("X-Forwarded-Uri", "/tools")
	req.Header.Set("X-Auth-Request-Email", "alice@example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("forward allow: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/authorize/forward", nil)
	req.Header.Set("X-Forwarded-Host", "unknown.example.com")
	req.Header.Set("X-Forwarded-Uri", "/tools")
	req.Header.Set("X-Auth-Request-Email", "alice@example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("forward unknown host: expected 403, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/authorize/forward", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("forward without headers: expected 400, got %d", rec.Code)
	}
}
