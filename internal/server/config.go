package server

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the HTTP server's tunables.
type Config struct {
	Addr      string // listen address, e.g. ":8080"
	CacheSize int    // finished-artifact cache entries
	BodyLimit int    // largest accepted document in bytes
	LogFormat string
	LogLevel  string
}

// ConfigFromEnv loads the server configuration from the process
// environment, with an optional .env file as fallback. A missing .env is
// not an error; real environment variables always win over file entries.
func ConfigFromEnv() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:      ":8080",
		CacheSize: 256,
		BodyLimit: 4 << 20,
		LogFormat: "json",
		LogLevel:  "info",
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if strings.HasPrefix(port, ":") {
			cfg.Addr = port
		} else {
			cfg.Addr = ":" + port
		}
	}
	if n, ok := envInt("CACHE_SIZE"); ok {
		cfg.CacheSize = n
	}
	if n, ok := envInt("BODY_LIMIT"); ok {
		cfg.BodyLimit = n
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// envInt reads a positive integer variable; unset, empty, or garbage
// values report false and leave the default in place.
func envInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
