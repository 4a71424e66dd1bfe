// Package config loads environment-based configuration, with optional
// .env support for local development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the binaries and the app session need.
type Config struct {
	// HTTP server (room server binary)
	Port string

	// Durable local record
	DBPath string

	// Remote room session
	RoomServerURL string
	RoomID        string
	SyncDebounce  time.Duration

	// External services
	ShortenerURL  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ReceiptModel  string

	// Logging
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in when present; real environment
// variables win.
func Load() *Config {
	// Ignore a missing .env; it is a development convenience only.
	_ = godotenv.Load()

	return &Config{
		Port:   getEnv("PORT", "8080"),
		DBPath: getEnv("DB_PATH", "./data/smartsplit.db"),

		RoomServerURL: getEnv("ROOM_SERVER_URL", ""),
		RoomID:        getEnv("ROOM_ID", ""),
		SyncDebounce:  getEnvDuration("SYNC_DEBOUNCE", 500*time.Millisecond),

		ShortenerURL:  getEnv("SHORTENER_URL", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		ReceiptModel:  getEnv("RECEIPT_MODEL", "gpt-4o-mini"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate returns an error describing every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SyncDebounce <= 0 || c.SyncDebounce > time.Minute {
		problems = append(problems, fmt.Sprintf("invalid sync debounce %s: must be within (0, 1m]", c.SyncDebounce))
	}

	for name, raw := range map[string]string{
		"room server URL": c.RoomServerURL,
		"shortener URL":   c.ShortenerURL,
	} {
		if raw == "" {
			continue // unconfigured services are a normal state, not an error
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			problems = append(problems, fmt.Sprintf("invalid %s %q: must be an http(s) URL", name, raw))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
