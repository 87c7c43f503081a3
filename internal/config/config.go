// Package config loads service configuration from defaults, an optional
// YAML file and the environment, in that order of precedence (env wins).
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Security SecurityConfig `koanf:"security"`
	Upload   UploadConfig   `koanf:"upload"`
	WhatsApp WhatsAppConfig `koanf:"whatsapp"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Environment       string        `koanf:"environment"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig describes the Postgres connection. When both URL and Host
// are empty the service runs against the in-memory store.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"sslmode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	PingTimeout     time.Duration `koanf:"ping_timeout"`
}

type CacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

type SecurityConfig struct {
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	AdminPasswordHash string        `koanf:"admin_password_hash"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	CookieName        string        `koanf:"cookie_name"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	LoginRateLimit    int           `koanf:"login_rate_limit"`
}

type UploadConfig struct {
	Provider      string `koanf:"provider"`
	CloudName     string `koanf:"cloud_name"`
	APIKey        string `koanf:"api_key"`
	APISecret     string `koanf:"api_secret"`
	Folder        string `koanf:"folder"`
	MaxBytes      int64  `koanf:"max_bytes"`
	MaxDimension  int    `koanf:"max_dimension"`
	JPEGQuality   int    `koanf:"jpeg_quality"`
	PublicBaseURL string `koanf:"public_base_url"`
}

type WhatsAppConfig struct {
	CountryCode string `koanf:"country_code"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DefaultAdminPassword is the password shipped for local development.
const DefaultAdminPassword = "admin123"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			Environment:       "development",
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Database: DatabaseConfig{
			Port:            5432,
			User:            "postgres",
			Password:        "postgres",
			Name:            "east_stress_store",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Cache: CacheConfig{TTL: 45 * time.Second},
		Security: SecurityConfig{
			AdminUsername:     "admin",
			AdminPassword:     DefaultAdminPassword,
			SessionTimeout:    24 * time.Hour,
			CookieName:        "auth_token",
			CORSOrigins:       []string{},
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
			LoginRateLimit:    5,
		},
		Upload: UploadConfig{
			Provider:     "memory",
			Folder:       "pre-order/products",
			MaxBytes:     10 << 20,
			MaxDimension: 1200,
			JPEGQuality:  70,
		},
		WhatsApp: WhatsAppConfig{CountryCode: "62"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}
}

// IsProduction reports whether the service runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DSN returns the Postgres connection string, or "" when none is configured.
func (d DatabaseConfig) DSN() string {
	if dsn := strings.TrimSpace(d.URL); dsn != "" {
		return dsn
	}
	if strings.TrimSpace(d.Host) == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	if strings.TrimSpace(c.Security.AdminUsername) == "" {
		return fmt.Errorf("ADMIN_USERNAME is required")
	}
	if c.Security.AdminPassword == "" && c.Security.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	switch c.Upload.Provider {
	case "memory":
	case "cloudinary":
		if c.Upload.CloudName == "" || c.Upload.APIKey == "" || c.Upload.APISecret == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required for the cloudinary provider")
		}
	default:
		return fmt.Errorf("UPLOAD_PROVIDER must be memory or cloudinary, got %q", c.Upload.Provider)
	}
	if c.Upload.JPEGQuality < 1 || c.Upload.JPEGQuality > 100 {
		return fmt.Errorf("UPLOAD_JPEG_QUALITY must be between 1 and 100")
	}

	if c.IsProduction() {
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if c.Security.AdminPasswordHash == "" && c.Security.AdminPassword == DefaultAdminPassword {
			return fmt.Errorf("the default admin password cannot be used in production")
		}
		if c.Upload.Provider == "memory" {
			return fmt.Errorf("UPLOAD_PROVIDER=memory is not allowed in production")
		}
	}
	return nil
}
