package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/env"
)

// ErrNotConfigured is wrapped by collaborators whose credentials are missing.
// It only fails the call that needed them.
var ErrNotConfigured = errors.New("not configured")

const (
	defaultNotionBaseURL = "https://api.notion.com"
	defaultNotionVersion = "2025-09-03"
	defaultZAPIBaseURL   = "https://api.z-api.io"
	defaultAsaasBaseURL  = "https://api.asaas.com/v3"
)

// Config is built once at process start and handed to every component that
// needs external-system coordinates or credentials.
type Config struct {
	App         AppConfig
	HTTPTimeout time.Duration `validate:"gt=0"`
	Notion      NotionConfig
	ZAPI        ZAPIConfig
	Asaas       AsaasConfig
	Dedup       DedupConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Archive     ArchiveConfig
}

type AppConfig struct {
	Host             string
	Port             string `validate:"required,numeric"`
	Env              string
	APIKey           string
	WebhookRateLimit int `validate:"gte=0"`
}

type NotionConfig struct {
	Token        string
	DatabaseID   string
	DataSourceID string
	Version      string
	BaseURL      string `validate:"required,url"`
}

type ZAPIConfig struct {
	InstanceID    string
	Token         string
	SecurityToken string
	BaseURL       string `validate:"required,url"`
	CountryCode   string `validate:"required,numeric"`
}

type AsaasConfig struct {
	APIKey  string
	BaseURL string `validate:"required,url"`
}

type DedupConfig struct {
	TTL     time.Duration `validate:"gt=0"`
	Backend string        `validate:"oneof=memory redis"`
}

type DatabaseConfig struct {
	Driver   string `validate:"oneof=mysql sqlite"`
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	Path     string
}

type CacheConfig struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether a Redis endpoint was configured.
func (c CacheConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

type ArchiveConfig struct {
	Enabled         bool
	AccessKeyID     string `validate:"required_if=Enabled true"`
	SecretAccessKey string `validate:"required_if=Enabled true"`
	Region          string
	Bucket          string `validate:"required_if=Enabled true"`
	EndpointURL     string
}

// Load reads the process configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Host:             env.GetEnv("APP_HOST", "0.0.0.0"),
			Port:             env.GetEnv("APP_PORT", "8000"),
			Env:              env.GetEnv("APP_ENV", "prod"),
			APIKey:           strings.TrimSpace(env.GetEnv("API_KEY", "")),
			WebhookRateLimit: env.GetInt("WEBHOOK_RATE_LIMIT", 120),
		},
		HTTPTimeout: time.Duration(env.GetInt("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		Notion: NotionConfig{
			Token:        strings.TrimSpace(env.GetEnv("NOTION_TOKEN", "")),
			DatabaseID:   strings.TrimSpace(env.GetEnv("NOTION_DB_ID", "")),
			DataSourceID: strings.TrimSpace(env.GetEnv("NOTION_DATA_SOURCE_ID", "")),
			Version:      strings.TrimSpace(env.GetEnv("NOTION_VERSION", defaultNotionVersion)),
			BaseURL:      strings.TrimRight(env.GetEnv("NOTION_BASE_URL", defaultNotionBaseURL), "/"),
		},
		ZAPI: ZAPIConfig{
			InstanceID:    strings.TrimSpace(env.GetEnv("ZAPI_INSTANCE_ID", "")),
			Token:         strings.TrimSpace(env.GetEnv("ZAPI_TOKEN", "")),
			SecurityToken: strings.TrimSpace(env.GetEnv("ZAPI_SECURITY_TOKEN", "")),
			BaseURL:       strings.TrimRight(env.GetEnv("ZAPI_BASE_URL", defaultZAPIBaseURL), "/"),
			CountryCode:   strings.TrimSpace(env.GetEnv("PHONE_COUNTRY_CODE", "55")),
		},
		Asaas: AsaasConfig{
			APIKey:  strings.TrimSpace(env.GetEnv("ASAAS_API_KEY", "")),
			BaseURL: strings.TrimRight(env.GetEnv("ASAAS_BASE", defaultAsaasBaseURL), "/"),
		},
		Dedup: DedupConfig{
			TTL:     time.Duration(env.GetInt("SEND_DEDUP_TTL_SECONDS", 300)) * time.Second,
			Backend: strings.ToLower(strings.TrimSpace(env.GetEnv("SEND_DEDUP_BACKEND", "memory"))),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(strings.TrimSpace(env.GetEnv("DB_DRIVER", "mysql"))),
			User:     env.GetEnv("DB_USER", ""),
			Password: env.GetEnv("DB_PASSWORD", ""),
			Host:     env.GetEnv("DB_HOST", "127.0.0.1"),
			Port:     env.GetEnv("DB_PORT", "3306"),
			Name:     env.GetEnv("DB_NAME", ""),
			Path:     env.GetEnv("DB_PATH", "./onboarding.db"),
		},
		Cache: CacheConfig{
			Host:     strings.TrimSpace(env.GetEnv("CACHE_HOST", "")),
			Port:     env.GetEnv("CACHE_PORT", "6379"),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
		},
		Archive: ArchiveConfig{
			Enabled:         env.GetBool("ARCHIVE_ENABLED", false),
			AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
			Region:          env.GetEnv("S3_REGION", "us-east-1"),
			Bucket:          env.GetEnv("S3_BUCKET_NAME", ""),
			EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the structural settings. Missing provider credentials are
// not an error here; each client reports them when it is called.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Dedup.Backend == "redis" && !c.Cache.Enabled() {
		return errors.New("invalid configuration: SEND_DEDUP_BACKEND=redis requires CACHE_HOST")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.App.Host, c.App.Port)
}
