// Package common provides shared utilities for Echo
package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/echo-journal/echo/internal/interfaces"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Echo
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Auth        AuthConfig     `toml:"auth"`
	Cookies     CookieConfig   `toml:"cookies"`
	Clients     ClientsConfig  `toml:"clients"`
	Digest      DigestConfig   `toml:"digest"`
	Calendar    CalendarConfig `toml:"calendar"`
	Limits      LimitsConfig   `toml:"limits"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects the storage backend and its location.
// Driver is "badger" (embedded, default) or "surrealdb".
type StorageConfig struct {
	Driver    string          `toml:"driver"`
	Entries   AreaConfig      `toml:"entries"`  // journal entries (BadgerHold)
	Internal  AreaConfig      `toml:"internal"` // user accounts + per-user KV (BadgerHold)
	SurrealDB SurrealDBConfig `toml:"surrealdb"`
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// SurrealDBConfig holds connection settings for the networked backend.
type SurrealDBConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// AuthConfig holds JWT signing configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// CookieConfig names the session cookies issued by the cookie bridge.
type CookieConfig struct {
	AccessName  string `toml:"access_name"`
	RefreshName string `toml:"refresh_name"`
	CSRFName    string `toml:"csrf_name"`
	Domain      string `toml:"domain"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DigestConfig holds weekly digest delivery settings.
type DigestConfig struct {
	From     string `toml:"from"`
	SMTPAddr string `toml:"smtp_addr"` // host:port; empty disables delivery
	SMTPUser string `toml:"smtp_user"`
	SMTPPass string `toml:"smtp_pass"`
}

// CalendarConfig holds Google Calendar OAuth credentials.
type CalendarConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// LimitsConfig holds request limiting configuration.
type LimitsConfig struct {
	WriteRatePerMin int   `toml:"write_rate_per_min"` // sustained mutating requests per client per minute
	WriteBurst      int   `toml:"write_burst"`
	MaxBodyBytes    int64 `toml:"max_body_bytes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Driver:   "badger",
			Entries:  AreaConfig{Path: "data/entries"},
			Internal: AreaConfig{Path: "data/internal"},
			SurrealDB: SurrealDBConfig{
				Address:   "ws://localhost:8000",
				Namespace: "echo",
				Database:  "echo",
				Username:  "root",
				Password:  "root",
			},
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Cookies: CookieConfig{
			AccessName:  "echo_session",
			RefreshName: "echo_refresh",
			CSRFName:    "csrf_token",
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				Timeout: "30s",
			},
		},
		Digest: DigestConfig{
			From: "digest@echo.local",
		},
		Limits: LimitsConfig{
			WriteRatePerMin: 60,
			WriteBurst:      20,
			MaxBodyBytes:    1 << 20,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console", "file"},
			FilePath:   "./logs/echo.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ECHO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("ECHO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("ECHO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("ECHO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if driver := os.Getenv("ECHO_STORAGE_DRIVER"); driver != "" {
		config.Storage.Driver = driver
	}

	if path := os.Getenv("ECHO_DATA_PATH"); path != "" {
		config.Storage.Entries.Path = filepath.Join(path, "entries")
		config.Storage.Internal.Path = filepath.Join(path, "internal")
	}

	if addr := os.Getenv("ECHO_SURREAL_ADDRESS"); addr != "" {
		config.Storage.SurrealDB.Address = addr
	}

	// Auth overrides
	if v := os.Getenv("ECHO_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("ECHO_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}

	// Cookie names and domain follow the deployment environment
	if v := os.Getenv("AUTH_ACCESS_COOKIE"); v != "" {
		config.Cookies.AccessName = v
	}
	if v := os.Getenv("AUTH_REFRESH_COOKIE"); v != "" {
		config.Cookies.RefreshName = v
	}
	if v := os.Getenv("AUTH_CSRF_COOKIE"); v != "" {
		config.Cookies.CSRFName = v
	}
	if v := os.Getenv("AUTH_COOKIE_DOMAIN"); v != "" {
		config.Cookies.Domain = v
	}

	if v := os.Getenv("ECHO_CALENDAR_CLIENT_ID"); v != "" {
		config.Calendar.ClientID = v
	}
	if v := os.Getenv("ECHO_CALENDAR_CLIENT_SECRET"); v != "" {
		config.Calendar.ClientSecret = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment, InternalStore, or fallback
func ResolveAPIKey(ctx context.Context, store interfaces.InternalStore, name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key": {"GEMINI_API_KEY", "ECHO_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	// Environment variables win
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Then the system KV (set at runtime)
	if store != nil {
		apiKey, err := store.GetSystemKV(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or store", name)
}
