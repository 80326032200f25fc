package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Config carries the service configuration. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	Port         int
	SharedSecret string

	GitHubToken string
	GitHubOwner string

	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	OllamaModel  string

	// PrimaryProvider selects which provider heads the fallback chain:
	// "gemini" or "openai".
	PrimaryProvider string

	SettleDelay       time.Duration
	GenerationTimeout time.Duration

	Quiet bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over file entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              envInt("PORT", 8080),
		SharedSecret:      os.Getenv("SHARED_SECRET"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		GitHubOwner:       os.Getenv("GITHUB_OWNER"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       envOr("GEMINI_MODEL", DefaultGeminiModel),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       envOr("OPENAI_MODEL", DefaultOpenAIModel),
		OllamaModel:       os.Getenv("OLLAMA_MODEL"),
		PrimaryProvider:   envOr("PRIMARY_PROVIDER", "gemini"),
		SettleDelay:       time.Duration(envInt("SETTLE_DELAY_SECONDS", 5)) * time.Second,
		GenerationTimeout: time.Duration(envInt("GENERATION_TIMEOUT_SECONDS", 120)) * time.Second,
		Quiet:             os.Getenv("CODESMITH_QUIET") == "1",
	}
	return cfg, cfg.Validate()
}

// Validate checks the fields every deployment needs. Provider keys are
// checked loosely: at least one generation provider must be configured.
func (c *Config) Validate() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN is required")
	}
	if c.GitHubOwner == "" {
		return fmt.Errorf("GITHUB_OWNER is required")
	}
	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" && c.OllamaModel == "" {
		return fmt.Errorf("no generation provider configured: set GEMINI_API_KEY, OPENAI_API_KEY or OLLAMA_MODEL")
	}
	if c.PrimaryProvider != "gemini" && c.PrimaryProvider != "openai" {
		return fmt.Errorf("PRIMARY_PROVIDER must be gemini or openai, got %q", c.PrimaryProvider)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
