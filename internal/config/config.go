package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings. Values come from the environment;
// Load applies defaults and validates the settings that have no safe default.
type Config struct {
	Port            string
	Debug           bool
	ShutdownTimeout time.Duration

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	SessionCacheTTL      time.Duration
	SessionPurgeSchedule string

	AuthRateLimit float64
	AuthRateBurst int

	AppURL string

	MailDriver   string
	MailFrom     string
	SMTPAddr     string
	SMTPUser     string
	SMTPPassword string

	SMSDriver     string
	SMSFrom       string
	SMSAPIURL     string
	SMSAccountSID string
	SMSAuthToken  string

	NotifierGroup    string
	NotifierConsumer string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Debug:           getEnvBool("DEBUG", false),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		ResetTokenTTL:   getEnvDuration("RESET_TOKEN_TTL", 30*time.Minute),

		SessionCacheTTL:      getEnvDuration("SESSION_CACHE_TTL", time.Minute),
		SessionPurgeSchedule: getEnv("SESSION_PURGE_SCHEDULE", "@hourly"),

		AuthRateLimit: getEnvFloat("AUTH_RATE_LIMIT", 5),
		AuthRateBurst: getEnvInt("AUTH_RATE_BURST", 10),

		AppURL: getEnv("APP_URL", "http://localhost:3000"),

		MailDriver:   getEnv("MAIL_DRIVER", "preview"),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@kestrel.local"),
		SMTPAddr:     getEnv("SMTP_ADDR", "localhost:1025"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SMSDriver:     getEnv("SMS_DRIVER", "preview"),
		SMSFrom:       getEnv("SMS_FROM", ""),
		SMSAPIURL:     getEnv("SMS_API_URL", ""),
		SMSAccountSID: getEnv("SMS_ACCOUNT_SID", ""),
		SMSAuthToken:  getEnv("SMS_AUTH_TOKEN", ""),

		NotifierGroup:    getEnv("NOTIFIER_GROUP", "notifier-group"),
		NotifierConsumer: getEnv("NOTIFIER_CONSUMER", defaultConsumerName()),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.MailDriver != "preview" && cfg.MailDriver != "smtp" {
		return nil, fmt.Errorf("MAIL_DRIVER must be \"preview\" or \"smtp\", got %q", cfg.MailDriver)
	}
	if cfg.SMSDriver != "preview" && cfg.SMSDriver != "http" {
		return nil, fmt.Errorf("SMS_DRIVER must be \"preview\" or \"http\", got %q", cfg.SMSDriver)
	}
	if cfg.SMSDriver == "http" && cfg.SMSAPIURL == "" {
		return nil, fmt.Errorf("SMS_API_URL is required when SMS_DRIVER=http")
	}

	return cfg, nil
}

func defaultConsumerName() string {
	host, err := os.Hostname()
	if err != nil {
		return "notifier-1"
	}
	return host
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
