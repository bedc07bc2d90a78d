package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
postgres:
  dsn: postgres://yb:yb@db:5432/yearbook
moderation:
  pending_page_limit: 25
  gate_profiles: false
  signed_url_ttl: 2m
bot:
  api_base_url: https://api.yearbook.example
  poll_timeout: 45
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Postgres.DSN != "postgres://yb:yb@db:5432/yearbook" {
		t.Fatalf("unexpected postgres dsn: %s", cfg.Postgres.DSN)
	}
	if cfg.Moderation.PendingPageLimit != 25 {
		t.Fatalf("unexpected pending page limit: %d", cfg.Moderation.PendingPageLimit)
	}
	if cfg.Moderation.GateProfiles {
		t.Fatalf("gate_profiles override should be false")
	}
	if cfg.Moderation.SignedURLTTL != 2*time.Minute {
		t.Fatalf("unexpected signed url ttl: %s", cfg.Moderation.SignedURLTTL)
	}
	if cfg.Bot.APIBaseURL != "https://api.yearbook.example" {
		t.Fatalf("unexpected bot api base url: %s", cfg.Bot.APIBaseURL)
	}
	if cfg.Bot.PollTimeout != 45 {
		t.Fatalf("unexpected bot poll timeout: %d", cfg.Bot.PollTimeout)
	}

	// Untouched sections keep their defaults.
	if cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Fatalf("read timeout default should stay 5s, got %s", cfg.HTTP.ReadTimeout)
	}
	if cfg.Auth.JWTAccessTTL != 15*time.Minute {
		t.Fatalf("jwt access ttl default should stay 15m, got %s", cfg.Auth.JWTAccessTTL)
	}
	if cfg.S3.Bucket != "yearbook-media" {
		t.Fatalf("unexpected s3 bucket default: %s", cfg.S3.Bucket)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("MODERATION_PENDING_PAGE_LIMIT", "10")
	t.Setenv("BOT_ADMIN_TOKEN", "secret-token")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Moderation.PendingPageLimit != 10 {
		t.Fatalf("unexpected pending page limit: %d", cfg.Moderation.PendingPageLimit)
	}
	if cfg.Bot.AdminToken != "secret-token" {
		t.Fatalf("unexpected bot admin token: %s", cfg.Bot.AdminToken)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "not-a-duration")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for invalid JWT_ACCESS_TTL")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"REFRESH_TTL",
		"BOT_TOKEN",
		"BOT_API_BASE_URL",
		"BOT_ADMIN_TOKEN",
		"BOT_POLL_TIMEOUT",
		"BOT_HTTP_TIMEOUT",
		"MODERATION_PENDING_PAGE_LIMIT",
		"MODERATION_GATE_PROFILES",
		"MODERATION_SIGNED_URL_TTL",
	} {
		t.Setenv(key, "")
	}
}
