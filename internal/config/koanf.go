package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/east-stress-store/config.yaml",
}

// envMappings maps environment variables (lower-cased) to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"host":                   "server.host",
	"port":                   "server.port",
	"environment":            "server.environment",
	"http_read_timeout":      "server.read_timeout",
	"http_write_timeout":     "server.write_timeout",
	"http_idle_timeout":      "server.idle_timeout",
	"shutdown_timeout":       "server.shutdown_timeout",
	"database_url":           "database.url",
	"db_host":                "database.host",
	"db_port":                "database.port",
	"db_user":                "database.user",
	"db_password":            "database.password",
	"db_name":                "database.name",
	"db_sslmode":             "database.sslmode",
	"db_max_open_conns":      "database.max_open_conns",
	"db_max_idle_conns":      "database.max_idle_conns",
	"db_conn_max_idle":       "database.conn_max_idle",
	"db_conn_max_lifetime":   "database.conn_max_lifetime",
	"cache_ttl":              "cache.ttl",
	"admin_username":         "security.admin_username",
	"admin_password":         "security.admin_password",
	"admin_password_hash":    "security.admin_password_hash",
	"jwt_secret":             "security.jwt_secret",
	"session_timeout":        "security.session_timeout",
	"cors_origins":           "security.cors_origins",
	"rate_limit_requests":    "security.rate_limit_requests",
	"rate_limit_window":      "security.rate_limit_window",
	"login_rate_limit":       "security.login_rate_limit",
	"upload_provider":        "upload.provider",
	"cloudinary_cloud_name":  "upload.cloud_name",
	"cloudinary_api_key":     "upload.api_key",
	"cloudinary_api_secret":  "upload.api_secret",
	"upload_folder":          "upload.folder",
	"upload_max_bytes":       "upload.max_bytes",
	"upload_max_dimension":   "upload.max_dimension",
	"upload_jpeg_quality":    "upload.jpeg_quality",
	"upload_public_base_url": "upload.public_base_url",
	"whatsapp_country_code":  "whatsapp.country_code",
	"log_level":              "logging.level",
	"log_format":             "logging.format",
	"log_caller":             "logging.caller",
}

var sliceConfigPaths = []string{"security.cors_origins"}

// Load builds the configuration: defaults, then the YAML file (if any),
// then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// processSliceFields turns comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
