// Package config is the immutable process configuration. It is built once
// at startup, from the environment or a yaml/json file, and passed into
// the components that need it; nothing reads ambient state afterwards.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Brokerage
	MetaAPIToken string `json:"metaapi_token" yaml:"metaapi_token"`
	AccountID    string `json:"account_id" yaml:"account_id"`
	BrokerURL    string `json:"broker_url,omitempty" yaml:"broker_url,omitempty"` // optional regional endpoint

	// Chat transport
	TelegramToken string `json:"telegram_token" yaml:"telegram_token"`
	PublicURL     string `json:"public_url" yaml:"public_url"` // webhook callback base
	Port          int    `json:"port" yaml:"port"`

	// Trading
	RiskPercent  float64 `json:"risk_percent" yaml:"risk_percent"`
	AllowedUsers string  `json:"allowed_users" yaml:"allowed_users"` // comma-separated; empty allows all

	Journal JournalConfig `json:"journal" yaml:"journal"`
}

type JournalConfig struct {
	Type string `json:"type" yaml:"type"` // "", "csv" or "sqlite"
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Default returns a configuration with sensible defaults; credentials and
// the account id must still be supplied.
func Default() *Config {
	return &Config{
		RiskPercent: 1.0,
		Port:        10000,
	}
}

// FromEnv builds the configuration from process environment variables.
// Call godotenv.Load first if a .env file should be honored.
func FromEnv() (*Config, error) {
	cfg := Default()

	cfg.MetaAPIToken = os.Getenv("METAAPI_TOKEN")
	cfg.AccountID = os.Getenv("ACCOUNT_ID")
	cfg.BrokerURL = os.Getenv("METAAPI_URL")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.PublicURL = os.Getenv("PUBLIC_URL")
	cfg.AllowedUsers = os.Getenv("ALLOWED_USERS")

	if v := os.Getenv("RISK_PERCENT"); v != "" {
		risk, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("RISK_PERCENT: %w", err)
		}
		cfg.RiskPercent = risk
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("JOURNAL"); v != "" {
		// "sqlite:audit.db" or "csv:audit.csv"
		kind, path, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("JOURNAL: want type:path, got %q", v)
		}
		cfg.Journal = JournalConfig{Type: kind, Path: path}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a yaml or json file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as yaml (or json for a .json path).
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.MetaAPIToken == "" {
		return fmt.Errorf("metaapi_token is required")
	}
	if c.AccountID == "" {
		return fmt.Errorf("account_id is required")
	}
	if c.TelegramToken == "" {
		return fmt.Errorf("telegram_token is required")
	}
	if c.RiskPercent <= 0 || c.RiskPercent > 100 {
		return fmt.Errorf("risk_percent must be between 0 and 100")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be a valid TCP port")
	}
	switch c.Journal.Type {
	case "", "csv", "sqlite":
	default:
		return fmt.Errorf("journal.type must be empty, 'csv' or 'sqlite'")
	}
	if c.Journal.Type != "" && c.Journal.Path == "" {
		return fmt.Errorf("journal.path required for journal type %q", c.Journal.Type)
	}
	return nil
}

// Redacted returns a copy safe to print: credentials are masked, shape and
// the rest of the values kept.
func (c *Config) Redacted() *Config {
	out := *c
	out.MetaAPIToken = mask(c.MetaAPIToken)
	out.TelegramToken = mask(c.TelegramToken)
	return &out
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}
