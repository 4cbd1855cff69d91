// internal/config/config.go
//
// Environment configuration for the client.
//
// Environment variables (all optional):
//   API_BASE_URL   base URL of the game API            (http://localhost:3000)
//   STORE_PATH     SQLite file, or ":memory:"          (./data/minesweeper.db)
//   MOVE_TIMEOUT   bound on a single game API call     (10s)
//   HTTP_TIMEOUT   http.Client timeout                 (15s)
//   TICK_PERIOD    elapsed-time refresh period         (1s)
//   PORT           view server port                    (5176)
//   CLIENT_ORIGIN  origin of the presentation page     (http://localhost:5173)
//   LOG_LEVEL      zerolog level                       (info)
//   LOG_PRETTY     "1" for console output instead of JSON
package config

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// MemoryStore is the STORE_PATH value selecting the in-memory store.
const MemoryStore = ":memory:"

// Config holds application configuration.
type Config struct {
	APIBaseURL  string
	StorePath   string
	MoveTimeout time.Duration
	HTTPTimeout time.Duration
	TickPeriod  time.Duration
	Port        string
	Origin      string
	LogLevel    string
	LogPretty   bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:3000"),
		StorePath:   getEnv("STORE_PATH", "./data/minesweeper.db"),
		MoveTimeout: getDuration("MOVE_TIMEOUT", 10*time.Second),
		HTTPTimeout: getDuration("HTTP_TIMEOUT", 15*time.Second),
		TickPeriod:  getDuration("TICK_PERIOD", time.Second),
		Port:        getEnv("PORT", "5176"),
		Origin:      getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   os.Getenv("LOG_PRETTY") == "1",
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getDuration parses k as a time.Duration; unparsable or non-positive values fall back to def.
func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("var", k).Str("value", v).Dur("default", def).Msg("invalid duration, using default")
		return def
	}
	return d
}
