package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDatabaseDSN_EnvOverride(t *testing.T) {
	path := writeConfig(t, "database-dsn: file:from-file.db\n")
	t.Setenv(EnvDBConnection, "postgres://env@db/override")

	dsn, err := LoadDatabaseDSN(path)
	if err != nil {
		t.Fatalf("LoadDatabaseDSN: %v", err)
	}
	if dsn != "postgres://env@db/override" {
		t.Fatalf("expected env DSN to win, got %q", dsn)
	}
}

func TestLoadDatabaseDSN_FlatAndNestedKeys(t *testing.T) {
	t.Setenv(EnvDBConnection, "")

	flat := writeConfig(t, "database-dsn: file:flat.db\n")
	dsn, err := LoadDatabaseDSN(flat)
	if err != nil {
		t.Fatalf("flat key: %v", err)
	}
	if dsn != "file:flat.db" {
		t.Fatalf("flat dsn = %q", dsn)
	}

	nested := writeConfig(t, "database:\n  dsn: file:nested.db\n")
	dsn, err = LoadDatabaseDSN(nested)
	if err != nil {
		t.Fatalf("nested key: %v", err)
	}
	if dsn != "file:nested.db" {
		t.Fatalf("nested dsn = %q", dsn)
	}
}

func TestLoadDatabaseDSN_Missing(t *testing.T) {
	t.Setenv(EnvDBConnection, "")
	path := writeConfig(t, "port: 8319\n")
	if _, err := LoadDatabaseDSN(path); err != ErrMissingDatabaseDSN {
		t.Fatalf("expected ErrMissingDatabaseDSN, got %v", err)
	}
}

func TestLoadJWTConfig(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	t.Setenv(EnvJWTExpiry, "")

	path := writeConfig(t, "jwt:\n  secret: file-secret\n  expiry: 1h\n")
	cfg, err := LoadJWTConfig(path)
	if err != nil {
		t.Fatalf("LoadJWTConfig: %v", err)
	}
	if cfg.Secret != "file-secret" {
		t.Fatalf("secret = %q", cfg.Secret)
	}
	if cfg.Expiry != time.Hour {
		t.Fatalf("expiry = %v", cfg.Expiry)
	}

	t.Setenv(EnvJWTSecret, "env-secret")
	t.Setenv(EnvJWTExpiry, "15m")
	cfg, err = LoadJWTConfig(path)
	if err != nil {
		t.Fatalf("LoadJWTConfig with env: %v", err)
	}
	if cfg.Secret != "env-secret" || cfg.Expiry != 15*time.Minute {
		t.Fatalf("expected env overrides, got %q/%v", cfg.Secret, cfg.Expiry)
	}
}

func TestLoadJWTConfig_DefaultExpiry(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	t.Setenv(EnvJWTExpiry, "")
	cfg, err := LoadJWTConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadJWTConfig: %v", err)
	}
	if cfg.Expiry != defaultJWTExpiry {
		t.Fatalf("expected default expiry, got %v", cfg.Expiry)
	}
}

func TestLoadAssetExtensions(t *testing.T) {
	t.Setenv(EnvAssetExtensions, "")

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	exts := LoadAssetExtensions(missing)
	if len(exts) == 0 {
		t.Fatalf("expected built-in defaults")
	}
	found := false
	for _, ext := range exts {
		if ext == "css" {
			found = true
		}
	}
	if !found {
		t.Fatalf("defaults must include css, got %v", exts)
	}

	path := writeConfig(t, "asset-extensions:\n  - .CSS\n  - js\n")
	exts = LoadAssetExtensions(path)
	if len(exts) != 2 || exts[0] != "css" || exts[1] != "js" {
		t.Fatalf("file extensions = %v", exts)
	}

	t.Setenv(EnvAssetExtensions, "png, .SVG ,")
	exts = LoadAssetExtensions(path)
	if len(exts) != 2 || exts[0] != "png" || exts[1] != "svg" {
		t.Fatalf("env extensions = %v", exts)
	}
}

func TestLoadPort(t *testing.T) {
	path := writeConfig(t, "port: 9001\n")
	if got := LoadPort(path); got != 9001 {
		t.Fatalf("LoadPort = %d", got)
	}
	if got := LoadPort(filepath.Join(t.TempDir(), "missing.yaml")); got != 0 {
		t.Fatalf("missing file should yield 0, got %d", got)
	}
}
