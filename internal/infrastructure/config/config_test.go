package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TABLETOP_JWT_SECRET", testSecret)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("default port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Security.JWT.TTLHours != 24 {
		t.Errorf("default TTL = %d, want 24", cfg.Security.JWT.TTLHours)
	}
	if cfg.Security.Admin.Username != "admin" {
		t.Errorf("default admin username = %q, want admin", cfg.Security.Admin.Username)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("TABLETOP_JWT_SECRET", testSecret)

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 8088
database:
  path: /tmp/test.db
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8088 {
		t.Errorf("port = %d, want 8088", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("TABLETOP_JWT_SECRET", testSecret)
	t.Setenv("TABLETOP_SERVER_PORT", "9999")
	t.Setenv("TABLETOP_ADMIN_USERNAME", "dungeon-master")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8088\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want env override 9999", cfg.Server.Port)
	}
	if cfg.Security.Admin.Username != "dungeon-master" {
		t.Errorf("admin username = %q", cfg.Security.Admin.Username)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.Security.JWT.Secret = "" }},
		{"short secret", func(c *Config) { c.Security.JWT.Secret = "short" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero ttl", func(c *Config) { c.Security.JWT.TTLHours = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.JWT.Secret = testSecret
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}
