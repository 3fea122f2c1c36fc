package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PASSVAULT_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AccessWindowTTL != 3600 {
		t.Errorf("AccessWindowTTL = %d, want 3600", cfg.AccessWindowTTL)
	}
	if !cfg.AuditPersistEnabled {
		t.Error("audit persistence should default to enabled")
	}
	if cfg.Source("access_window_ttl") != "default" {
		t.Errorf("source = %q, want default", cfg.Source("access_window_ttl"))
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PASSVAULT_CONFIG_PATH", dir)

	yml := []byte("access_window_ttl: 900\ntrusted_proxies:\n  - 10.0.0.0/8\n")
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), yml, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AccessWindowTTL != 900 {
		t.Errorf("AccessWindowTTL = %d, want 900", cfg.AccessWindowTTL)
	}
	if cfg.Source("access_window_ttl") != "file" {
		t.Errorf("source = %q, want file", cfg.Source("access_window_ttl"))
	}

	// Untouched values keep defaults.
	if cfg.SessionTokenTTL != 480 {
		t.Errorf("SessionTokenTTL = %d, want 480", cfg.SessionTokenTTL)
	}
	if !cfg.IsTrustedProxy("10.1.2.3") {
		t.Error("expected 10.1.2.3 inside trusted range")
	}
	if cfg.IsTrustedProxy("192.168.0.1") {
		t.Error("192.168.0.1 is outside the trusted range")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PASSVAULT_CONFIG_PATH", dir)
	t.Setenv("PASSVAULT_ACCESS_WINDOW_TTL", "120")
	t.Setenv("PASSVAULT_AUDIT_PERSIST_ENABLED", "false")

	yml := []byte("access_window_ttl: 900\n")
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), yml, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AccessWindowTTL != 120 {
		t.Errorf("AccessWindowTTL = %d, want 120", cfg.AccessWindowTTL)
	}
	if cfg.Source("access_window_ttl") != "environment" {
		t.Errorf("source = %q, want environment", cfg.Source("access_window_ttl"))
	}
	if cfg.AuditPersistEnabled {
		t.Error("audit persistence should be disabled by env")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PASSVAULT_CONFIG_PATH", dir)

	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not yaml"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	cfg := newDefault()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	cfg.TrustedProxies = []string{"not-a-cidr"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid trusted_proxies error")
	}

	cfg = newDefault()
	cfg.AccessWindowTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid access_window_ttl error")
	}
}

func TestAttributesCoverEveryName(t *testing.T) {
	cfg := newDefault()
	attrs := cfg.Attributes()

	byName := map[string]bool{}
	for _, a := range attrs {
		byName[a.Name] = true
	}
	for _, name := range attributeNames() {
		if !byName[name] {
			t.Errorf("attribute %q missing from Attributes()", name)
		}
	}
}
