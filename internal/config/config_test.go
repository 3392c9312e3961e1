package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
server:
  host: 0.0.0.0
  port: 8080
database:
  host: localhost
  port: 5432
  name: liftlog
  user: liftlog
  password: secret
auth:
  api_key: test-key
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d", cfg.Server.Port)
	}
	if cfg.Database.Name != "liftlog" {
		t.Errorf("database.name = %q", cfg.Database.Name)
	}
	if cfg.Auth.APIKey != "test-key" {
		t.Errorf("auth.api_key = %q", cfg.Auth.APIKey)
	}
	if cfg.Tailscale.Enabled {
		t.Error("tailscale must default to disabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestLoadMissingFields(t *testing.T) {
	cases := []struct {
		remove string
		want   string
	}{
		{"port: 8080", "server.port"},
		{"host: localhost", "database.host"},
		{"name: liftlog", "database.name"},
		{"user: liftlog", "database.user"},
		{"api_key: test-key", "auth.api_key"},
	}
	for _, tc := range cases {
		content := strings.Replace(validYAML, tc.remove, "", 1)
		_, err := Load(writeConfig(t, content))
		if err == nil {
			t.Errorf("removing %q: Load succeeded", tc.remove)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("removing %q: err = %v, want mention of %s", tc.remove, err, tc.want)
		}
	}
}

func TestTailscaleRequiresHostname(t *testing.T) {
	content := validYAML + "\ntailscale:\n  enabled: true\n"
	if _, err := Load(writeConfig(t, content)); err == nil {
		t.Error("tailscale enabled without hostname accepted")
	}

	content += "  hostname: liftlog\n"
	if _, err := Load(writeConfig(t, content)); err != nil {
		t.Errorf("tailscale with hostname rejected: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIFTLOG_SERVER_PORT", "9090")
	t.Setenv("LIFTLOG_DB_PASSWORD", "from-env")
	t.Setenv("LIFTLOG_AUTH_API_KEY", "env-key")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want env override 9090", cfg.Server.Port)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("database.password = %q", cfg.Database.Password)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("auth.api_key = %q", cfg.Auth.APIKey)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "liftlog", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/liftlog?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}

	d.SSLMode = "require"
	if got := d.DSN(); !strings.HasSuffix(got, "sslmode=require") {
		t.Errorf("DSN = %q, want sslmode=require", got)
	}
}

func TestDev(t *testing.T) {
	cfg := Dev()
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8080 {
		t.Errorf("dev server = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Auth.APIKey != "" {
		t.Error("dev mode must not set an API key")
	}
}
