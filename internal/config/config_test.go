package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.PageSize != 6 {
		t.Errorf("PageSize = %d, want 6", cfg.PageSize)
	}
	if cfg.JWTAccessExpiry != 24*time.Hour {
		t.Errorf("JWTAccessExpiry = %v, want 24h", cfg.JWTAccessExpiry)
	}
	if cfg.ImageStorage != "local" {
		t.Errorf("ImageStorage = %q, want local", cfg.ImageStorage)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "DB_DRIVER: sqlite\nSQLITE_PATH: /tmp/fg.db\nPAGE_SIZE: \"12\"\nJWT_SECRET: from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")

	cfg := Load()
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.PageSize != 12 {
		t.Errorf("PageSize = %d, want 12", cfg.PageSize)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("JWTSecret = %q, env must win over file", cfg.JWTSecret)
	}
	if got, want := cfg.DSN(), "/tmp/fg.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestParseFallbacks(t *testing.T) {
	if got := parseDuration("soon", time.Minute); got != time.Minute {
		t.Errorf("parseDuration fallback = %v", got)
	}
	if got := parseInt("-3", 7); got != 7 {
		t.Errorf("parseInt negative = %d, want fallback 7", got)
	}
}

func TestIsAdminEmail(t *testing.T) {
	cfg := &Config{AdminEmails: "root@example.com, Chef@Example.com"}
	if !cfg.IsAdminEmail("chef@example.com") {
		t.Error("IsAdminEmail should match case-insensitively after trimming")
	}
	if cfg.IsAdminEmail("guest@example.com") {
		t.Error("IsAdminEmail matched an unlisted address")
	}
	if (&Config{}).IsAdminEmail("") {
		t.Error("empty ADMIN_EMAILS must not match the empty string")
	}
}
