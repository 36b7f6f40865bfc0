package application

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// PushConfig configures the push-message provider.
type PushConfig struct {
	BaseURL     string `yaml:"base_url"`
	CountryCode string `yaml:"country_code"`
}

// EmailConfig configures the HTTP email provider.
type EmailConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Sender   string `yaml:"sender"`
}

// Config defines sweep configuration. Channels are optional: a
// deployment with no push provider simply never generates push
// outcomes.
type Config struct {
	Push  PushConfig  `yaml:"push"`
	Email EmailConfig `yaml:"email"`

	DispatchTimeoutSeconds int `yaml:"dispatch_timeout_seconds"`
	MaxInFlight            int `yaml:"max_in_flight"`

	// InternalEvery enables the in-process scheduler when non-empty,
	// e.g. "30s". The HTTP cron trigger works either way.
	InternalEvery string `yaml:"internal_every"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		Push: PushConfig{
			BaseURL:     os.Getenv("PUSH_BASE_URL"),
			CountryCode: getenvDefault("PUSH_COUNTRY_CODE", "91"),
		},
		Email: EmailConfig{
			Endpoint: os.Getenv("EMAIL_ENDPOINT"),
			APIKey:   os.Getenv("EMAIL_API_KEY"),
			Sender:   os.Getenv("EMAIL_SENDER"),
		},
		DispatchTimeoutSeconds: getenvIntDefault("DISPATCH_TIMEOUT_SECONDS", 10),
		MaxInFlight:            getenvIntDefault("DISPATCH_MAX_IN_FLIGHT", 4),
		InternalEvery:          os.Getenv("SWEEP_INTERNAL_EVERY"),
	}

	if path := os.Getenv("SWEEP_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Push.BaseURL == "" && cfg.Email.Endpoint == "" {
		return cfg, errors.New("sweep config: no outbound channel configured")
	}
	if cfg.Email.Endpoint != "" && cfg.Email.Sender == "" {
		return cfg, errors.New("sweep config: email endpoint without sender")
	}
	if cfg.DispatchTimeoutSeconds <= 0 {
		cfg.DispatchTimeoutSeconds = 10
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}
	return cfg, nil
}

// DispatchTimeout returns the per-send timeout.
func (c Config) DispatchTimeout() time.Duration {
	return time.Duration(c.DispatchTimeoutSeconds) * time.Second
}

// InternalInterval parses the in-process schedule; zero disables it.
func (c Config) InternalInterval() time.Duration {
	if c.InternalEvery == "" {
		return 0
	}
	interval, err := time.ParseDuration(c.InternalEvery)
	if err != nil || interval <= 0 {
		return 0
	}
	return interval
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
