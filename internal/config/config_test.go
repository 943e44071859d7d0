package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("expected defaults for a missing file, got %+v", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitgrid.yaml")
	content := `
redis:
  addr: redis.internal:6380
  db: 3
sync:
  debounce_ms: 250
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Addr != "redis.internal:6380" || cfg.Redis.DB != 3 {
		t.Errorf("redis config not applied: %+v", cfg.Redis)
	}
	if cfg.Sync.DebounceMS != 250 {
		t.Errorf("debounce not applied: %d", cfg.Sync.DebounceMS)
	}
	// Unset fields keep their defaults.
	if cfg.Sync.TimeoutMS != 5000 {
		t.Errorf("expected default timeout, got %d", cfg.Sync.TimeoutMS)
	}
	if cfg.Auth.Secret == "" {
		t.Error("expected default auth secret")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitgrid.yaml")
	if err := os.WriteFile(path, []byte("redis:\n  addr: from-file:6379\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HABITGRID_REDIS_ADDR", "from-env:6379")
	t.Setenv("HABITGRID_AUTH_SECRET", "env-secret")
	t.Setenv("HABITGRID_REDIS_DB", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Addr != "from-env:6379" {
		t.Errorf("env should beat file, got %q", cfg.Redis.Addr)
	}
	if cfg.Auth.Secret != "env-secret" || cfg.Redis.DB != 7 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_MalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitgrid.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ["), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoad_NonPositiveDurationsReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitgrid.yaml")
	if err := os.WriteFile(path, []byte("sync:\n  debounce_ms: -5\n  timeout_ms: 0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sync.DebounceMS != 500 || cfg.Sync.TimeoutMS != 5000 {
		t.Errorf("expected non-positive durations to reset to defaults, got %+v", cfg.Sync)
	}
}
