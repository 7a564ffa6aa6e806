package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_MergesWithDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
firestore:
  project_id: test-project
snapshot:
  ttl: 45s
search:
  default_limit: 25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Snapshot.TTL != 45*time.Second {
		t.Errorf("snapshot ttl = %v, want 45s", cfg.Snapshot.TTL)
	}
	if cfg.Search.DefaultLimit != 25 {
		t.Errorf("default limit = %d, want 25", cfg.Search.DefaultLimit)
	}
	// Untouched sections keep their defaults.
	if cfg.Firestore.Collection != "products" {
		t.Errorf("collection = %q, want default", cfg.Firestore.Collection)
	}
	if cfg.Snapshot.DefaultSite != "KLC1" || cfg.Snapshot.DefectiveSite != "BROKAS" {
		t.Errorf("site codes = %q/%q, want defaults", cfg.Snapshot.DefaultSite, cfg.Snapshot.DefectiveSite)
	}
	if cfg.Search.MaxLimit != 100 {
		t.Errorf("max limit = %d, want default 100", cfg.Search.MaxLimit)
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_FS_PROJECT", "env-project")
	path := writeConfig(t, `
firestore:
  project_id: ${TEST_FS_PROJECT}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Firestore.ProjectID != "env-project" {
		t.Errorf("project id = %q, want env value", cfg.Firestore.ProjectID)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"missing collection", func(c *Config) { c.Firestore.Collection = "" }},
		{"no redis address", func(c *Config) { c.Redis.Addresses = nil }},
		{"zero snapshot ttl", func(c *Config) { c.Snapshot.TTL = 0 }},
		{"missing default site", func(c *Config) { c.Snapshot.DefaultSite = "" }},
		{"zero default limit", func(c *Config) { c.Search.DefaultLimit = 0 }},
		{"excessive max limit", func(c *Config) { c.Search.MaxLimit = 5000 }},
		{"fuzzy threshold out of range", func(c *Config) { c.Search.FuzzyThreshold = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}
