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

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "atelier.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "ATELIER_PORT")
	setString(&cfg.Server.CORSOrigin, "ATELIER_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "ATELIER_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "ATELIER_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "ATELIER_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "ATELIER_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "ATELIER_PG_HEALTH_CHECK")
	setString(&cfg.Logging.Level, "ATELIER_LOG_LEVEL")
	setString(&cfg.Logging.Service, "ATELIER_LOG_SERVICE")
	setStringSlice(&cfg.Content.Sections, "ATELIER_SECTIONS")
	setInt64(&cfg.Cache.MaxSizeMB, "ATELIER_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "ATELIER_CACHE_TTL")
	setString(&cfg.Media.Backend, "ATELIER_MEDIA_BACKEND")
	setString(&cfg.Media.LocalDir, "ATELIER_MEDIA_DIR")
	setString(&cfg.Media.PublicBase, "ATELIER_MEDIA_PUBLIC_BASE")
	setString(&cfg.Media.S3Bucket, "ATELIER_S3_BUCKET")
	setString(&cfg.Media.S3Endpoint, "ATELIER_S3_ENDPOINT")
	setString(&cfg.Media.S3AccessKey, "ATELIER_S3_ACCESS_KEY")
	setString(&cfg.Media.S3SecretKey, "ATELIER_S3_SECRET_KEY")
	setInt64(&cfg.Media.MaxUploadMB, "ATELIER_MEDIA_MAX_UPLOAD_MB")
	setString(&cfg.Auth.PasswordHash, "ATELIER_ADMIN_PASSWORD_HASH")
	setDuration(&cfg.Auth.SessionTTL, "ATELIER_SESSION_TTL")
	setString(&cfg.Otel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate rejects configurations that cannot possibly work.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port must not be empty")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn must not be empty")
	}
	if len(cfg.Content.Sections) == 0 {
		return errors.New("content.sections must list at least one section")
	}
	seen := make(map[string]bool, len(cfg.Content.Sections))
	for _, key := range cfg.Content.Sections {
		if key == "" {
			return errors.New("content.sections must not contain empty keys")
		}
		if seen[key] {
			return fmt.Errorf("content.sections contains duplicate key %q", key)
		}
		seen[key] = true
	}
	switch cfg.Media.Backend {
	case "local", "s3":
	default:
		return fmt.Errorf("media.backend must be local or s3, got %q", cfg.Media.Backend)
	}
	if cfg.Media.Backend == "s3" && cfg.Media.S3Bucket == "" {
		return errors.New("media.s3_bucket is required for the s3 backend")
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setStringSlice(dst *[]string, env string) {
	if v := os.Getenv(env); v != "" {
		parts := strings.Split(v, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}

func setInt32(dst *int32, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
