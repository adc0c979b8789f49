package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	SecretKey string // Required: shared HMAC signing secret
	Algorithm string // Optional: JWT signing algorithm (HS256, HS384, HS512) (default: HS256)
	Issuer    string // Optional: issuer claim for tokens (default: authd)

	AccessTokenTTL     time.Duration // Optional: access token lifetime (default: 30m)
	RefreshTokenTTL    time.Duration // Optional: refresh token lifetime (default: 672h = 4 weeks)
	Temp2FATokenTTL    time.Duration // Optional: temp 2FA token lifetime (default: 5m)
	ActivationTokenTTL time.Duration // Optional: activation/reset token lifetime (default: 15m)

	DatabaseDriver string // Optional: database driver (sqlite, postgres) (default: sqlite)
	DatabaseFile   string // Optional: path to SQLite database file (default: ./authd.db)
	DatabaseURL    string // Required for postgres: connection URL

	RedisURL    string // Optional: mail queue transport; mail is logged instead when unset
	FrontendURL string // Optional: base URL for activation/reset links (default: http://localhost:3000)

	SMTPHost     string // Optional: SMTP relay host; mail is logged instead when unset
	SMTPPort     int    // Optional: SMTP relay port (default: 587)
	SMTPUser     string // Optional: SMTP username
	SMTPPassword string // Optional: SMTP password
	SMTPFrom     string // Optional: sender address (default: no-reply@localhost)
	SMTPFromName string // Optional: sender display name (default: Authd)

	MailSendRate float64 // Optional: outbound mail deliveries per second (default: 5)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// ErrMissingSecret reports a start without the one mandatory setting.
var ErrMissingSecret = errors.New("AUTH_SECRET_KEY must be set")

func LoadConfig() (Config, error) {
	cfg := Config{
		SecretKey: os.Getenv("AUTH_SECRET_KEY"),
		Algorithm: getEnvOrDefault("AUTH_ALGORITHM", "HS256"),
		Issuer:    getEnvOrDefault("AUTH_ISSUER", "authd"),

		AccessTokenTTL:     getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL:    getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 4*7*24*time.Hour),
		Temp2FATokenTTL:    getEnvDurationOrDefault("TEMP_2FA_TOKEN_TTL", 5*time.Minute),
		ActivationTokenTTL: getEnvDurationOrDefault("ACTIVATION_TOKEN_TTL", 15*time.Minute),

		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "authd.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		RedisURL:    os.Getenv("REDIS_URL"),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASS"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@localhost"),
		SMTPFromName: getEnvOrDefault("SMTP_FROM_NAME", "Authd"),

		MailSendRate: getEnvFloatOrDefault("MAIL_SEND_RATE", 5),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.SecretKey == "" {
		return Config{}, ErrMissingSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
		return floatValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
