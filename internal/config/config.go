// internal/config/config.go
//
// Environment-driven configuration for the CW Simon server.
// Responsibilities:
//   - Load an optional .env file (godotenv) before reading the environment.
//   - Parse typed values with defaults (string/int/bool/float/duration).
//   - Resolve the default game timing through timing.NewConfig.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cwsimon/internal/morse"
	"github.com/robalobadob/cwsimon/internal/timing"
)

// DevJWTSecret is used when JWT_SECRET is unset outside production.
const DevJWTSecret = "dev_secret_change_me"

type Config struct {
	Port      string
	LogLevel  string
	LogPretty bool
	DBPath    string

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool

	DailySalt      string
	RequestTimeout time.Duration

	// Timing is the default for games that bring no overrides.
	Timing timing.Config
	// Symbols restricts the random chooser; empty means the full catalog.
	Symbols []string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("LOG_PRETTY", false),
		DBPath:         getEnv("DB_PATH", "./data/cwsimon.db"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiresDays: getEnvAsInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "cwsimon_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     os.Getenv("NODE_ENV") == "production",
		DailySalt:      getEnv("DAILY_SALT", "cwsimon"),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		Timing: timing.NewConfig(timing.Options{
			LetterWPM:        getEnvAsFloat("LETTER_WPM", 0),
			WordWPM:          getEnvAsFloat("WORD_WPM", 0),
			NoInputTimeoutMs: getEnvAsFloat("NO_INPUT_TIMEOUT_MS", 0),
		}),
		Symbols: morse.ParseSymbols(os.Getenv("SIMON_SYMBOLS")),
	}

	if cfg.JWTSecret == "" {
		if cfg.Production {
			log.Warn().Msg("JWT_SECRET is not set in production; using the development secret")
		}
		cfg.JWTSecret = DevJWTSecret
	}
	if cfg.JWTExpiresDays < 1 {
		cfg.JWTExpiresDays = 14
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsFloat leaves range checks to the caller; timing.NewConfig coerces.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
