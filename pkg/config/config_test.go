package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_OWNER", "owner")
	t.Setenv("GEMINI_API_KEY", "key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("PRIMARY_PROVIDER", "")
	t.Setenv("SETTLE_DELAY_SECONDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.Port)
	}
	if cfg.GeminiModel != DefaultGeminiModel {
		t.Fatalf("unexpected default model: %q", cfg.GeminiModel)
	}
	if cfg.PrimaryProvider != "gemini" {
		t.Fatalf("unexpected default provider: %q", cfg.PrimaryProvider)
	}
	if cfg.SettleDelay != 5*time.Second {
		t.Fatalf("unexpected settle delay: %v", cfg.SettleDelay)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("PRIMARY_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SETTLE_DELAY_SECONDS", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("PORT override ignored: %d", cfg.Port)
	}
	if cfg.PrimaryProvider != "openai" {
		t.Fatalf("provider override ignored: %q", cfg.PrimaryProvider)
	}
	if cfg.SettleDelay != 12*time.Second {
		t.Fatalf("settle delay override ignored: %v", cfg.SettleDelay)
	}
}

func TestValidate_MissingToken(t *testing.T) {
	cfg := &Config{GitHubOwner: "owner", GeminiAPIKey: "key", PrimaryProvider: "gemini", Port: 8080}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing GITHUB_TOKEN")
	}
}

func TestValidate_NoProvider(t *testing.T) {
	cfg := &Config{GitHubToken: "t", GitHubOwner: "o", PrimaryProvider: "gemini", Port: 8080}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when no provider is configured")
	}
}

func TestValidate_UnknownPrimaryProvider(t *testing.T) {
	cfg := &Config{GitHubToken: "t", GitHubOwner: "o", GeminiAPIKey: "k", PrimaryProvider: "anthropic", Port: 8080}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown primary provider")
	}
}

func TestValidate_MalformedPortFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("malformed PORT should fall back to default, got %d", cfg.Port)
	}
}
