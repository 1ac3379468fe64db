// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends accepted by ATTENDANCE_SESSION_BACKEND.
const (
	SessionCookie = "cookie"
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

const devSecret = "dev-attendance-secret-change-me"

var (
	ErrMissingSecret  = errors.New("ATTENDANCE_SECRET must be set in production")
	ErrUnknownBackend = errors.New("ATTENDANCE_SESSION_BACKEND must be cookie, memory or redis")
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env                string
	Addr               string
	DBPath             string
	Secret             string
	SessionBackend     string
	RedisAddr          string
	SessionTTL         time.Duration
	RateLimitPerSecond int
	ResendKey          string
	EmailFrom          string
	NotifyAbsentees    bool
	LogLevel           slog.Level
	LogFormat          string
	DisableCSRF        bool
}

// IsProduction reports whether the app runs with production hardening.
func (a App) IsProduction() bool {
	return a.Env == "production"
}

// Load reads an optional .env file and returns config populated from the
// environment with defaults.
// PRE: none
// POST: Returns a validated App, or an error for settings that cannot run
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config_event", "event", "dotenv_unreadable", "error", err)
	}

	app := App{
		Env:                getEnv("ATTENDANCE_ENV", "dev"),
		Addr:               getEnv("ATTENDANCE_ADDR", ":8080"),
		DBPath:             getEnv("ATTENDANCE_DB_PATH", "attendance.db"),
		Secret:             os.Getenv("ATTENDANCE_SECRET"),
		SessionBackend:     strings.ToLower(getEnv("ATTENDANCE_SESSION_BACKEND", SessionCookie)),
		RedisAddr:          getEnv("ATTENDANCE_REDIS_ADDR", "localhost:6379"),
		SessionTTL:         durationEnv("ATTENDANCE_SESSION_TTL", 24*time.Hour),
		RateLimitPerSecond: intEnv("ATTENDANCE_RATE_LIMIT", 10),
		ResendKey:          os.Getenv("RESEND_API_KEY"),
		EmailFrom:          getEnv("ATTENDANCE_EMAIL_FROM", "attendance@localhost"),
		NotifyAbsentees:    boolEnv("ATTENDANCE_NOTIFY_ABSENTEES", false),
		LogLevel:           levelEnv("ATTENDANCE_LOG_LEVEL", slog.LevelInfo),
		LogFormat:          strings.ToLower(getEnv("ATTENDANCE_LOG_FORMAT", "text")),
		DisableCSRF:        boolEnv("ATTENDANCE_DISABLE_CSRF", false),
	}

	if app.Secret == "" {
		if app.IsProduction() {
			return App{}, ErrMissingSecret
		}
		slog.Warn("config_event", "event", "dev_secret_in_use")
		app.Secret = devSecret
	}
	switch app.SessionBackend {
	case SessionCookie, SessionMemory, SessionRedis:
	default:
		return App{}, ErrUnknownBackend
	}
	if app.IsProduction() && app.DisableCSRF {
		slog.Warn("config_event", "event", "csrf_disabled_in_production")
	}
	return app, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil || d <= 0 {
			slog.Warn("config_event", "event", "invalid_duration", "key", key, "fallback", fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			slog.Warn("config_event", "event", "invalid_bool", "key", key, "fallback", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			slog.Warn("config_event", "event", "invalid_int", "key", key, "fallback", fallback)
			return fallback
		}
		return n
	}
	return fallback
}

func levelEnv(key string, fallback slog.Level) slog.Level {
	if val := os.Getenv(key); val != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(val)); err != nil {
			slog.Warn("config_event", "event", "invalid_level", "key", key, "fallback", fallback)
			return fallback
		}
		return level
	}
	return fallback
}
