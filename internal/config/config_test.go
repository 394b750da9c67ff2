package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
database:
  host: localhost
  port: 3306
  user: quiz
  dbname: quiz
jwt:
  secret: dev-secret
storage:
  type: local
  local_path: `+filepath.Join(t.TempDir(), "uploads")+`
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.JWT.ExpireTime != 24*time.Hour {
		t.Errorf("expire = %v, want 24h", cfg.JWT.ExpireTime)
	}
	if cfg.Admin.Email != "admin@gmail.com" || cfg.Admin.Name != "Admin" {
		t.Errorf("admin defaults not applied: %+v", cfg.Admin)
	}
	if cfg.Leaderboard.Size != 10 {
		t.Errorf("leaderboard size = %d, want 10", cfg.Leaderboard.Size)
	}
	if _, err := os.Stat(cfg.Storage.LocalPath); err != nil {
		t.Errorf("local storage path not created: %v", err)
	}
}

func TestLoadConfigRejectsShortSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: short
storage:
  type: minio
`)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected error for short JWT secret in release mode")
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: oracle
storage:
  type: minio
`)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
