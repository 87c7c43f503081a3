package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Cache.TTL != 45*time.Second {
		t.Errorf("Cache.TTL = %v, want 45s", cfg.Cache.TTL)
	}
	if cfg.Security.CookieName != "auth_token" {
		t.Errorf("CookieName = %q, want auth_token", cfg.Security.CookieName)
	}
	if cfg.Upload.Folder != "pre-order/products" {
		t.Errorf("Upload.Folder = %q", cfg.Upload.Folder)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{}
	if d.DSN() != "" {
		t.Fatalf("expected empty DSN without url or host")
	}
	d = DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "shop", SSLMode: "disable"}
	if got, want := d.DSN(), "postgres://u:p@db:5432/shop?sslmode=disable"; got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
	d.URL = "postgres://override"
	if d.DSN() != "postgres://override" {
		t.Fatalf("URL should take precedence")
	}
}

func TestValidateProductionRules(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Environment = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short JWT secret in production")
	}

	cfg.Security.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default admin password in production")
	}

	cfg.Security.AdminPassword = "a-much-better-password"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for memory upload provider in production")
	}

	cfg.Upload.Provider = "cloudinary"
	cfg.Upload.CloudName, cfg.Upload.APIKey, cfg.Upload.APISecret = "c", "k", "s"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected port error")
	}

	cfg = defaultConfig()
	cfg.Upload.Provider = "s3"
	if err := cfg.Validate(); err == nil {
		t.Error("expected provider error")
	}

	cfg = defaultConfig()
	cfg.Security.AdminPassword = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected password error")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("WHATSAPP_COUNTRY_CODE", "65")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Errorf("Cache.TTL = %v, want 2m", cfg.Cache.TTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.WhatsApp.CountryCode != "65" {
		t.Errorf("CountryCode = %q", cfg.WhatsApp.CountryCode)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "server:\n  port: 7070\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}
