// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables, with an optional YAML file underneath. It provides a
// centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Data source names accepted by DATA_SOURCE.
const (
	SourcePostgres = "postgres"
	SourceREST     = "rest"
	SourceMemory   = "memory"
)

// DevPasskey is accepted by the admin login in development when no
// passkey hash is configured.
const DevPasskey = "admin"

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Catalog backend
	DataSource string // "postgres", "rest", "memory"
	RESTURL    string
	RESTKey    string
	RESTRPS    int

	// Admin access
	AdminPasskeyHash string
	AdminTOTPSecret  string

	// Catalog presentation
	NovelsCategoryID int64 // 0 disables the novels page
	PageSize         int
	MaxDepth         int
	PageCacheTTL     time.Duration

	// S3-compatible object storage for uploaded covers
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8080")
	v.SetDefault("app_env", "development")

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "libris")
	v.SetDefault("postgres_password", "changeme")
	v.SetDefault("postgres_db", "libris")

	v.SetDefault("valkey_host", "localhost")
	v.SetDefault("valkey_port", "6379")
	v.SetDefault("valkey_password", "")

	v.SetDefault("data_source", SourcePostgres)
	v.SetDefault("rest_url", "")
	v.SetDefault("rest_key", "")
	v.SetDefault("rest_rps", 10)

	v.SetDefault("admin_passkey_hash", "")
	v.SetDefault("admin_totp_secret", "")

	v.SetDefault("novels_category_id", 0)
	v.SetDefault("catalog_page_size", 12)
	v.SetDefault("catalog_max_depth", 32)
	v.SetDefault("page_cache_ttl", "5m")

	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_region", "fsn1")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_bucket", "libris-covers")
	v.SetDefault("s3_public_url", "")
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. When LIBRIS_CONFIG names a YAML file
// its values sit between the defaults and the environment. Returns an
// error if critical values are missing in production mode.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path := v.GetString("libris_config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Host: v.GetString("app_host"),
		Port: v.GetString("app_port"),
		Env:  v.GetString("app_env"),

		DBHost:     v.GetString("postgres_host"),
		DBPort:     v.GetString("postgres_port"),
		DBUser:     v.GetString("postgres_user"),
		DBPassword: v.GetString("postgres_password"),
		DBName:     v.GetString("postgres_db"),

		ValkeyHost:     v.GetString("valkey_host"),
		ValkeyPort:     v.GetString("valkey_port"),
		ValkeyPassword: v.GetString("valkey_password"),

		DataSource: strings.ToLower(v.GetString("data_source")),
		RESTURL:    v.GetString("rest_url"),
		RESTKey:    v.GetString("rest_key"),
		RESTRPS:    v.GetInt("rest_rps"),

		AdminPasskeyHash: v.GetString("admin_passkey_hash"),
		AdminTOTPSecret:  v.GetString("admin_totp_secret"),

		NovelsCategoryID: v.GetInt64("novels_category_id"),
		PageSize:         v.GetInt("catalog_page_size"),
		MaxDepth:         v.GetInt("catalog_max_depth"),
		PageCacheTTL:     v.GetDuration("page_cache_ttl"),

		S3Endpoint:  v.GetString("s3_endpoint"),
		S3Region:    v.GetString("s3_region"),
		S3AccessKey: v.GetString("s3_access_key"),
		S3SecretKey: v.GetString("s3_secret_key"),
		S3Bucket:    v.GetString("s3_bucket"),
		S3PublicURL: v.GetString("s3_public_url"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DataSource {
	case SourcePostgres, SourceMemory:
	case SourceREST:
		if c.RESTURL == "" {
			return errors.New("REST_URL must be set when DATA_SOURCE=rest")
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.DataSource)
	}

	if c.PageSize < 1 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("CATALOG_MAX_DEPTH must be positive, got %d", c.MaxDepth)
	}

	if c.Env == "production" {
		if c.DataSource == SourcePostgres && c.DBPassword == "changeme" {
			return errors.New("POSTGRES_PASSWORD must be set in production")
		}
		if c.AdminPasskeyHash == "" {
			return errors.New("ADMIN_PASSKEY_HASH must be set in production")
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// S3Enabled reports whether cover uploads are configured.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// TOTPEnabled reports whether the admin login requires a second factor.
func (c *Config) TOTPEnabled() bool {
	return c.AdminTOTPSecret != ""
}

// NovelsCategory returns the configured novels category id, or nil.
func (c *Config) NovelsCategory() *int64 {
	if c.NovelsCategoryID <= 0 {
		return nil
	}
	id := c.NovelsCategoryID
	return &id
}
