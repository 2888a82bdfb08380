// Package config provides environment configuration for the admin gateway.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Upstream marketplace API
	UpstreamBaseURL string
	UpstreamToken   string

	// Push channel
	PushTransport    string // "nats" or "websocket"
	PushNATSURL      string
	PushNATSSubject  string
	PushWebsocketURL string
	PushToken        string
	WatchdogInterval time.Duration

	// Feed
	FeedPageLimit int
	AlertSound    string

	// JWT settings
	JWTSecret string

	// Preferences store
	PrefsDBPath string

	// Moderation assistant
	OpenAIAPIKey string
	OpenAIModel  string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Upstream
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:9000"),
		UpstreamToken:   getEnv("UPSTREAM_TOKEN", ""),

		// Push channel
		PushTransport:    getEnv("PUSH_TRANSPORT", "nats"),
		PushNATSURL:      getEnv("PUSH_NATS_URL", "nats://localhost:4222"),
		PushNATSSubject:  getEnv("PUSH_NATS_SUBJECT", "items.new"),
		PushWebsocketURL: getEnv("PUSH_WS_URL", "ws://localhost:9001/live"),
		PushToken:        getEnv("PUSH_TOKEN", ""),
		WatchdogInterval: getDurationEnv("PUSH_WATCHDOG_INTERVAL", 5*time.Second),

		// Feed
		FeedPageLimit: getIntEnv("FEED_PAGE_LIMIT", 25),
		AlertSound:    getEnv("ALERT_SOUND", "new-item"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// Preferences
		PrefsDBPath: getEnv("PREFS_DB_PATH", "prefs.db"),

		// Assistant
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
