package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigYamlAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "exidealers.yml")
	content := `
system:
  workdir: ` + dir + `
web:
  port: 8088
search:
  default_limit: 20
  fetch_ceiling: 500
`
	if err := os.WriteFile(cfile, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEALER_ADMIN_SECRET", "s3cret")
	t.Setenv("DEALER_SEARCH_MAX_LIMIT", "50")

	cfg, err := LoadConfig(cfile)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Web.Port != 8088 {
		t.Fatalf("expected port 8088 from yaml, got %d", cfg.Web.Port)
	}
	if cfg.Search.DefaultLimit != 20 || cfg.Search.FetchCeiling != 500 {
		t.Fatalf("unexpected search config: %+v", cfg.Search)
	}
	if cfg.Search.FetchMultiplier != 10 {
		t.Fatalf("expected default multiplier to survive, got %d", cfg.Search.FetchMultiplier)
	}
	if cfg.Search.MaxLimit != 50 {
		t.Fatalf("expected env override for max limit, got %d", cfg.Search.MaxLimit)
	}
	if cfg.Auth.AdminSecret != "s3cret" {
		t.Fatalf("expected admin secret from env, got %q", cfg.Auth.AdminSecret)
	}
	if _, err := os.Stat(cfg.GetUploadDir()); err != nil {
		t.Fatalf("upload dir not created: %v", err)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEALER_SYSTEM_WORKDIR", dir)

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Type != "postgres" {
		t.Fatalf("expected default database type, got %q", cfg.Database.Type)
	}
	if cfg.System.Workdir != dir {
		t.Fatalf("expected workdir from env, got %q", cfg.System.Workdir)
	}
}
