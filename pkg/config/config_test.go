package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAddrDefaults(t *testing.T) {
	var c Config
	if got := c.Addr(); got != "0.0.0.0:8080" {
		t.Fatalf("Addr() = %q", got)
	}
	c.Server.Address = "127.0.0.1"
	c.Server.Port = 9000
	if got := c.Addr(); got != "127.0.0.1:9000" {
		t.Fatalf("Addr() = %q", got)
	}
}

func TestLoadYaml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  address: 10.0.0.1
  port: 8443
storage:
  db_path: /var/lib/wiki
auth:
  signing_keys: ["k1", "k2"]
  token_ttl_seconds: 3600
search:
  rebuild_cron: "0 3 * * *"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "10.0.0.1:8443" {
		t.Fatalf("Addr() = %q", cfg.Addr())
	}
	if cfg.Storage.DBPath != "/var/lib/wiki" {
		t.Fatalf("DBPath = %q", cfg.Storage.DBPath)
	}
	if len(cfg.Auth.SigningKeys) != 2 || cfg.Auth.SigningKeys[0] != "k1" {
		t.Fatalf("SigningKeys = %v", cfg.Auth.SigningKeys)
	}
	if cfg.TokenTTL() != time.Hour {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL())
	}
	if cfg.Search.RebuildCron != "0 3 * * *" {
		t.Fatalf("RebuildCron = %q", cfg.Search.RebuildCron)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file should error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WIKID_ADDR", "0.0.0.0:9999")
	t.Setenv("WIKID_DB_PATH", "/tmp/wiki-db")
	t.Setenv("WIKID_SIGNING_KEYS", "a, b ,c")
	t.Setenv("WIKID_TOKEN_TTL_SECONDS", "60")
	t.Setenv("WIKID_RATE_RPS", "2.5")

	var cfg Config
	if !LoadEnvOverrides(&cfg) {
		t.Fatal("env overrides should report usage")
	}
	if cfg.Addr() != "0.0.0.0:9999" {
		t.Fatalf("Addr() = %q", cfg.Addr())
	}
	if cfg.Storage.DBPath != "/tmp/wiki-db" {
		t.Fatalf("DBPath = %q", cfg.Storage.DBPath)
	}
	if len(cfg.Auth.SigningKeys) != 3 || cfg.Auth.SigningKeys[1] != "b" {
		t.Fatalf("SigningKeys = %v", cfg.Auth.SigningKeys)
	}
	if cfg.TokenTTL() != time.Minute {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL())
	}
	if cfg.Security.RateLimit.RPS != 2.5 {
		t.Fatalf("RPS = %v", cfg.Security.RateLimit.RPS)
	}
}

func TestRuntimeAccessors(t *testing.T) {
	SetRuntime(&RuntimeConfig{SigningKeys: []string{"k"}, TokenTTL: time.Minute})
	defer SetRuntime(nil)

	keys := GetSigningKeys()
	if len(keys) != 1 || keys[0] != "k" {
		t.Fatalf("GetSigningKeys = %v", keys)
	}
	// the returned slice is a copy
	keys[0] = "mutated"
	if GetSigningKeys()[0] != "k" {
		t.Fatal("runtime keys must not be mutable through the getter")
	}
	if GetTokenTTL() != time.Minute {
		t.Fatalf("GetTokenTTL = %v", GetTokenTTL())
	}
}
