package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("S3_BUCKET", "meals")
	t.Setenv("S3_PUBLIC_BASE_URL", "https://cdn.example.com/")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.AI.LookupTimeout != 20*time.Second {
		t.Errorf("AI.LookupTimeout = %v", cfg.AI.LookupTimeout)
	}
	if cfg.Storage.PublicBaseURL != "https://cdn.example.com" {
		t.Errorf("trailing slash not trimmed: %q", cfg.Storage.PublicBaseURL)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis should be disabled without REDIS_ADDR")
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v", cfg.Location)
	}
	if !strings.Contains(cfg.DB.DSN(), "dbname=macro_tracker") {
		t.Errorf("unexpected DSN %q", cfg.DB.DSN())
	}
}

func TestLoadReportsAllProblems(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("S3_PUBLIC_BASE_URL", "")
	t.Setenv("AI_LOOKUP_TIMEOUT", "soon")
	t.Setenv("AI_IDENTIFIER", "vision")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"JWT_SECRET", "GEMINI_API_KEY", "S3_BUCKET", "AI_LOOKUP_TIMEOUT", "AI_IDENTIFIER"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestAllowedOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.HTTP.AllowedOrigins)
	}
}
