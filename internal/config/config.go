package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultAppEnv           = "development"
	defaultHost             = "0.0.0.0"
	defaultPort             = "5000"
	defaultAPIPrefix        = "/api"
	defaultLogLevel         = "info"
	defaultSecretKey        = "dev-key-for-0xC-chat"
	defaultJWTSecret        = "jwt-secret-key-for-0xC-chat"
	defaultAccessMinutes    = "15"
	defaultRefreshLeadSecs  = "600"
	defaultRefreshDays      = "30"
	defaultMaxMessageLength = "1000"
	defaultStorageDriver    = StorageJSON
	defaultDataDir          = "data"
	defaultDatabaseURL      = "chat.db"
	defaultCORSOrigins      = "*"
	defaultRateLimit        = "100"
)

const (
	StorageJSON = "json"
	StorageSQL  = "sql"
)

type Config struct {
	AppEnv    string
	Host      string
	Port      string
	APIPrefix string
	LogLevel  string

	// SecretKey doubles as the X-API-Key value when SecretKeyEnabled.
	SecretKey        string
	SecretKeyEnabled bool
	JWTSecret        string
	RegisterEnabled  bool

	AccessTokenTTL  time.Duration
	RefreshLead     time.Duration
	RefreshTokenTTL time.Duration

	MaxMessageLength int

	StorageDriver string
	DataDir       string
	DatabaseURL   string

	CORSOrigins      []string
	RateLimitEnabled bool
	RateLimit        int
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:           strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", defaultAppEnv))),
		Host:             strings.TrimSpace(getEnv("HOST", defaultHost)),
		Port:             strings.TrimSpace(getEnv("PORT", defaultPort)),
		APIPrefix:        strings.TrimRight(strings.TrimSpace(getEnv("API_PREFIX", defaultAPIPrefix)), "/"),
		LogLevel:         strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)),
		SecretKey:        getEnv("SECRET_KEY", defaultSecretKey),
		SecretKeyEnabled: parseBoolEnv("SECRET_KEY_ENABLED", "0"),
		JWTSecret:        getEnv("JWT_SECRET_KEY", defaultJWTSecret),
		RegisterEnabled:  parseBoolEnv("REGISTER_ENABLED", "1"),
		StorageDriver:    strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", defaultStorageDriver))),
		DataDir:          strings.TrimSpace(getEnv("DATA_DIR", defaultDataDir)),
		DatabaseURL:      strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL)),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", defaultCORSOrigins)),
		RateLimitEnabled: parseBoolEnv("RATE_LIMIT_ENABLED", "0"),
	}

	accessMinutes, err := parseIntEnv("ACCESS_TOKEN_EXPIRES", defaultAccessMinutes)
	if err != nil {
		return nil, err
	}
	leadSeconds, err := parseIntEnv("TOKEN_REFRESH_SECONDS", defaultRefreshLeadSecs)
	if err != nil {
		return nil, err
	}
	refreshDays, err := parseIntEnv("REFRESH_TOKEN_EXPIRES", defaultRefreshDays)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = time.Duration(accessMinutes) * time.Minute
	cfg.RefreshLead = time.Duration(leadSeconds) * time.Second
	cfg.RefreshTokenTTL = time.Duration(refreshDays) * 24 * time.Hour

	if cfg.MaxMessageLength, err = parseIntEnv("MAX_MESSAGE_LENGTH", defaultMaxMessageLength); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = parseIntEnv("RATE_LIMIT", defaultRateLimit); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.RefreshLead > cfg.AccessTokenTTL {
		logrus.Warnf("TOKEN_REFRESH_SECONDS (%s) exceeds ACCESS_TOKEN_EXPIRES (%s): clients will see refresh_at after expiry",
			cfg.RefreshLead, cfg.AccessTokenTTL)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRES must be > 0")
	}
	if cfg.RefreshLead <= 0 {
		return fmt.Errorf("TOKEN_REFRESH_SECONDS must be > 0")
	}
	if cfg.RefreshTokenTTL <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRES must be > 0")
	}
	if cfg.MaxMessageLength <= 0 {
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be > 0")
	}
	if cfg.RateLimitEnabled && cfg.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be > 0 when RATE_LIMIT_ENABLED")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}
	if cfg.SecretKeyEnabled && strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("SECRET_KEY must not be empty when SECRET_KEY_ENABLED")
	}

	switch cfg.StorageDriver {
	case StorageJSON:
		if cfg.DataDir == "" {
			return fmt.Errorf("DATA_DIR must not be empty")
		}
	case StorageSQL:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must not be empty")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: %s, %s", StorageJSON, StorageSQL)
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET_KEY must be set and not default")
		}
		if cfg.SecretKeyEnabled && isEmptyOrDefault(cfg.SecretKey, defaultSecretKey) {
			return fmt.Errorf("in prod/release SECRET_KEY must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
