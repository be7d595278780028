package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"model-gateway/internal/config"
	"model-gateway/internal/registry"
)

func TestLoadWithEnvExpansionAndDefaults(t *testing.T) {
	t.Setenv("DEEPSEEK_BASE", "https://api.deepseek.com")
	cfgPath := writeTempConfig(t, `
models:
  - model_id: deepseek-chat
    provider: DeepSeek
    adapter: openai-compatible
    credential_env: DEEPSEEK_API_KEY
    api_base: ${DEEPSEEK_BASE}/chat/completions
  - model_id: gemini-2.5-flash
    adapter: gemini
    credential_env: GEMINI_API_KEY
`)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if got, want := cfg.Listen, ":8080"; got != want {
		t.Fatalf("listen = %q, want %q", got, want)
	}
	if got, want := cfg.UpstreamTimeout, 60*time.Second; got != want {
		t.Fatalf("upstream_timeout = %v, want %v", got, want)
	}
	if got, want := cfg.Temperature(), 0.7; got != want {
		t.Fatalf("temperature = %v, want %v", got, want)
	}
	if got, want := cfg.MaxBodyBytes, int64(1<<20); got != want {
		t.Fatalf("max_body_bytes = %d, want %d", got, want)
	}
	if got := cfg.CORS.AllowedOrigins; len(got) != 1 || got[0] != "*" {
		t.Fatalf("allowed_origins = %v", got)
	}

	reg := cfg.Registry()
	if got, want := reg.Len(), 2; got != want {
		t.Fatalf("registry size = %d, want %d", got, want)
	}
	ds, err := reg.Lookup("deepseek-chat")
	if err != nil {
		t.Fatalf("lookup deepseek-chat: %v", err)
	}
	if got, want := ds.BaseURL, "https://api.deepseek.com/chat/completions"; got != want {
		t.Fatalf("api_base = %q, want %q", got, want)
	}
	gm, err := reg.Lookup("gemini-2.5-flash")
	if err != nil {
		t.Fatalf("lookup gemini-2.5-flash: %v", err)
	}
	if gm.Provider != registry.ProviderGemini || gm.BaseURL != registry.DefaultGeminiBaseURL {
		t.Fatalf("unexpected gemini entry: %+v", gm)
	}
}

func TestLoadExplicitSettings(t *testing.T) {
	cfgPath := writeTempConfig(t, `
listen: 127.0.0.1:9000
upstream_timeout: 15s
default_temperature: 0
max_body_bytes: 2048
cors:
  allowed_origins: ["http://localhost:5173"]
credentials:
  ssm_prefix: /model-gateway
`)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UpstreamTimeout != 15*time.Second {
		t.Fatalf("upstream_timeout = %v", cfg.UpstreamTimeout)
	}
	if cfg.Temperature() != 0 {
		t.Fatalf("explicit zero temperature must be kept, got %v", cfg.Temperature())
	}
	if cfg.Credentials.SSMPrefix != "/model-gateway" {
		t.Fatalf("ssm_prefix = %q", cfg.Credentials.SSMPrefix)
	}
	if _, err := cfg.Registry().Lookup("gpt-4o-mini"); err != nil {
		t.Fatalf("empty model list should fall back to built-in registry: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Registry() == nil || cfg.Registry().Len() == 0 {
		t.Fatalf("default registry missing")
	}
}

func TestLoadFailsOnDuplicateModel(t *testing.T) {
	cfgPath := writeTempConfig(t, `
models:
  - model_id: sonnet
    adapter: openai-compatible
    credential_env: A
    api_base: https://api.example.com/v1/chat/completions
  - model_id: sonnet
    adapter: openai-compatible
    credential_env: B
    api_base: https://api2.example.com/v1/chat/completions
`)

	_, err := config.Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "duplicate model id") {
		t.Fatalf("expected duplicate model id error, got %v", err)
	}
}

func TestLoadFailsOnInvalidAPIBase(t *testing.T) {
	cfgPath := writeTempConfig(t, `
models:
  - model_id: m
    adapter: openai-compatible
    credential_env: A
    api_base: ftp://invalid
`)

	_, err := config.Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "http/https") {
		t.Fatalf("expected invalid api_base scheme error, got %v", err)
	}
}

func TestLoadFailsOnMissingAPIBase(t *testing.T) {
	cfgPath := writeTempConfig(t, `
models:
  - model_id: m
    adapter: openai-compatible
    credential_env: A
`)

	_, err := config.Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "api_base is required") {
		t.Fatalf("expected api_base required error, got %v", err)
	}
}

func TestLoadFailsOnMissingCredentialEnv(t *testing.T) {
	cfgPath := writeTempConfig(t, `
models:
  - model_id: m
    adapter: gemini
`)

	_, err := config.Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "credential_env is required") {
		t.Fatalf("expected credential_env required error, got %v", err)
	}
}

func TestLoadFailsOnInvalidAdapter(t *testing.T) {
	cfgPath := writeTempConfig(t, `
models:
  - model_id: m
    adapter: anthropic
    credential_env: A
`)

	_, err := config.Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "adapter") {
		t.Fatalf("expected adapter error, got %v", err)
	}
}

func TestLoadFailsOnTemperatureOutOfRange(t *testing.T) {
	cfgPath := writeTempConfig(t, `default_temperature: 3`)

	_, err := config.Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "default_temperature") {
		t.Fatalf("expected temperature error, got %v", err)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
