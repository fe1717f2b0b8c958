// Package config loads service configuration from an optional YAML file,
// a .env file and environment variables. Environment variables take precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Fonepay   FonepayConfig   `yaml:"fonepay"`
	Secrets   SecretsConfig   `yaml:"secrets"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logger    LoggerConfig    `yaml:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT" env-default:"9090"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// FonepayConfig holds merchant credentials and endpoint selection
type FonepayConfig struct {
	MerchantCode string `yaml:"merchant_code" env:"FONEPAY_MERCHANT_CODE"`
	// SecretKey takes precedence over SecretPath. Prefer SecretPath outside development.
	SecretKey  string `yaml:"secret_key" env:"FONEPAY_SECRET_KEY"`
	SecretPath string `yaml:"secret_path" env:"FONEPAY_SECRET_PATH"`
	// Environment is "sandbox" or "production"; ignored when BaseURL is set
	Environment string `yaml:"environment" env:"FONEPAY_ENVIRONMENT" env-default:"sandbox"`
	BaseURL     string `yaml:"base_url" env:"FONEPAY_BASE_URL"`
	Currency    string `yaml:"currency" env:"FONEPAY_CURRENCY" env-default:"NPR"`
	// Timezone for the DT field; empty means process local time
	Timezone string `yaml:"timezone" env:"FONEPAY_TIMEZONE"`
}

// SecretsConfig selects where the Fonepay secret key is read from
type SecretsConfig struct {
	Backend  string        `yaml:"backend" env:"SECRETS_BACKEND" env-default:"local"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"SECRETS_CACHE_TTL" env-default:"5m"`

	LocalPath string `yaml:"local_path" env:"SECRETS_LOCAL_PATH" env-default:"./secrets"`

	AWSRegion   string `yaml:"aws_region" env:"AWS_REGION" env-default:"ap-south-1"`
	AWSProfile  string `yaml:"aws_profile" env:"AWS_PROFILE"`
	AWSEndpoint string `yaml:"aws_endpoint" env:"AWS_ENDPOINT_URL"`

	VaultAddress    string `yaml:"vault_address" env:"VAULT_ADDR" env-default:"http://127.0.0.1:8200"`
	VaultAuthMethod string `yaml:"vault_auth_method" env:"VAULT_AUTH_METHOD" env-default:"token"`
	VaultToken      string `yaml:"vault_token" env:"VAULT_TOKEN"`
	VaultRoleID     string `yaml:"vault_role_id" env:"VAULT_ROLE_ID"`
	VaultSecretID   string `yaml:"vault_secret_id" env:"VAULT_SECRET_ID"`
	VaultNamespace  string `yaml:"vault_namespace" env:"VAULT_NAMESPACE"`
	VaultMountPath  string `yaml:"vault_mount_path" env:"VAULT_MOUNT_PATH" env-default:"secret"`
	VaultKVVersion  string `yaml:"vault_kv_version" env:"VAULT_KV_VERSION" env-default:"v2"`
}

// RateLimitConfig holds per-client rate limits for the public endpoints
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RPS     float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"10"`
	Burst   int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"20"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL" env-default:"info"` // debug, info, warn, error
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT" env-default:"false"`
}

// Load reads configuration. A .env file in the working directory is loaded
// first when present; path may be empty to use environment variables only.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("load config: %w; %s", err, desc)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and enumerations
func (c *Config) Validate() error {
	if c.Fonepay.MerchantCode == "" {
		return fmt.Errorf("FONEPAY_MERCHANT_CODE is required")
	}
	if c.Fonepay.SecretKey == "" && c.Fonepay.SecretPath == "" {
		return fmt.Errorf("FONEPAY_SECRET_KEY or FONEPAY_SECRET_PATH is required")
	}
	switch c.Fonepay.Environment {
	case "sandbox", "production":
	default:
		return fmt.Errorf("FONEPAY_ENVIRONMENT must be sandbox or production, got %q", c.Fonepay.Environment)
	}
	switch c.Secrets.Backend {
	case "local", "aws", "vault":
	default:
		return fmt.Errorf("SECRETS_BACKEND must be local, aws or vault, got %q", c.Secrets.Backend)
	}
	if c.Server.Port <= 0 || c.Server.MetricsPort <= 0 {
		return fmt.Errorf("server ports must be positive")
	}
	if c.Server.Port == c.Server.MetricsPort {
		return fmt.Errorf("SERVER_PORT and METRICS_PORT must differ")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// Addr returns the HTTP listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
