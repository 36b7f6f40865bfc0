package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearSweepEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PUSH_BASE_URL", "PUSH_COUNTRY_CODE",
		"EMAIL_ENDPOINT", "EMAIL_API_KEY", "EMAIL_SENDER",
		"DISPATCH_TIMEOUT_SECONDS", "DISPATCH_MAX_IN_FLIGHT",
		"SWEEP_INTERNAL_EVERY", "SWEEP_CONFIG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearSweepEnv(t)
	t.Setenv("PUSH_BASE_URL", "https://push.example.com/send")
	t.Setenv("DISPATCH_TIMEOUT_SECONDS", "5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Push.BaseURL != "https://push.example.com/send" {
		t.Fatalf("push base url = %q", cfg.Push.BaseURL)
	}
	if cfg.Push.CountryCode != "91" {
		t.Fatalf("default country code = %q", cfg.Push.CountryCode)
	}
	if cfg.DispatchTimeout() != 5*time.Second {
		t.Fatalf("dispatch timeout = %v", cfg.DispatchTimeout())
	}
	if cfg.MaxInFlight != 4 {
		t.Fatalf("default max in flight = %d", cfg.MaxInFlight)
	}
	if cfg.InternalInterval() != 0 {
		t.Fatalf("internal scheduler must be off by default")
	}
}

func TestLoadConfigYAMLOverridesEnv(t *testing.T) {
	clearSweepEnv(t)
	t.Setenv("PUSH_BASE_URL", "https://env.example.com")

	path := filepath.Join(t.TempDir(), "sweep.yaml")
	content := []byte(`
push:
  base_url: https://file.example.com
  country_code: "44"
email:
  endpoint: https://mail.example.com/v1/send
  api_key: key-1
  sender: alerts@example.com
dispatch_timeout_seconds: 3
max_in_flight: 2
internal_every: 30s
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SWEEP_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Push.BaseURL != "https://file.example.com" {
		t.Fatalf("file must override env, got %q", cfg.Push.BaseURL)
	}
	if cfg.Push.CountryCode != "44" {
		t.Fatalf("country code = %q", cfg.Push.CountryCode)
	}
	if cfg.Email.Sender != "alerts@example.com" {
		t.Fatalf("email sender = %q", cfg.Email.Sender)
	}
	if cfg.MaxInFlight != 2 {
		t.Fatalf("max in flight = %d", cfg.MaxInFlight)
	}
	if cfg.InternalInterval() != 30*time.Second {
		t.Fatalf("internal interval = %v", cfg.InternalInterval())
	}
}

func TestLoadConfigRejectsNoChannels(t *testing.T) {
	clearSweepEnv(t)
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when no outbound channel is configured")
	}
}

func TestLoadConfigRejectsEmailWithoutSender(t *testing.T) {
	clearSweepEnv(t)
	t.Setenv("EMAIL_ENDPOINT", "https://mail.example.com/v1/send")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for email endpoint without sender")
	}
}

func TestInternalIntervalIgnoresGarbage(t *testing.T) {
	cfg := Config{InternalEvery: "soon"}
	if cfg.InternalInterval() != 0 {
		t.Fatalf("unparseable schedule must disable the internal scheduler")
	}
}
