// Package config loads the storefront configuration from YAML with
// environment overrides for deployment-specific values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	// Storage selects the backend: "memory" or "postgres".
	Storage     string `yaml:"storage"`
	DatabaseURL string `yaml:"databaseURL"`
	SeedDemo    bool   `yaml:"seedDemo"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	AMQPURL string `yaml:"amqpURL"`

	PaymentGatewayURL string `yaml:"paymentGatewayURL"`
	PaymentAPIKey     string `yaml:"paymentApiKey"`

	AdminToken        string `yaml:"adminToken"`
	SessionSecret     string `yaml:"sessionSecret"`
	SessionTTL        string `yaml:"sessionTTL"`
	CartTTL           string `yaml:"cartTTL"`
	SecureCookies     bool   `yaml:"secureCookies"`
	CORSOrigins       []string `yaml:"corsOrigins"`
	AuthRatePerMinute int    `yaml:"authRatePerMinute"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("STORAGE"); v != "" {
		cfg.Storage = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SEED_DEMO"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.SeedDemo = b
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("PAYMENT_GATEWAY_URL"); v != "" {
		cfg.PaymentGatewayURL = v
	}
	if v := os.Getenv("PAYMENT_API_KEY"); v != "" {
		cfg.PaymentAPIKey = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		cfg.AdminToken = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("AUTH_RATE_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.AuthRatePerMinute = n
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or PORT)")
	}
	switch cfg.Storage {
	case "", "memory":
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("config: databaseURL is required for postgres storage")
		}
	default:
		return fmt.Errorf("config: unknown storage %q (memory or postgres)", cfg.Storage)
	}
	if strings.TrimSpace(cfg.SessionSecret) == "" && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: sessionSecret or redisAddr is required for sessions")
	}
	if strings.TrimSpace(cfg.AdminToken) == "" {
		return errors.New("config: adminToken is required (set in config.yaml or ADMIN_TOKEN)")
	}
	if cfg.AuthRatePerMinute < 0 {
		return errors.New("config: authRatePerMinute must be >= 0")
	}
	if _, err := parseDuration(cfg.SessionTTL); err != nil {
		return fmt.Errorf("config: invalid sessionTTL: %w", err)
	}
	if _, err := parseDuration(cfg.CartTTL); err != nil {
		return fmt.Errorf("config: invalid cartTTL: %w", err)
	}
	return nil
}

// SessionTTLOrDefault returns the session lifetime, defaulting to 24h.
func (c FileConfig) SessionTTLOrDefault() time.Duration {
	d, _ := parseDuration(c.SessionTTL)
	if d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// CartTTLOrDefault returns the cart lifetime, defaulting to 30 days.
func (c FileConfig) CartTTLOrDefault() time.Duration {
	d, _ := parseDuration(c.CartTTL)
	if d <= 0 {
		return 30 * 24 * time.Hour
	}
	return d
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
