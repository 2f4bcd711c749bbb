// Package config loads chatbook settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted in STORE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config stores all the configuration of the application.
// Values are loaded from environment variables with optional
// loading from a .env file via godotenv.
type Config struct {
	// Storage settings
	StoreBackend string
	DBPath       string

	// Redis settings, used when StoreBackend is "redis"
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	RedisNamespace string

	// Server settings
	Port int

	// APISecret signs client tokens. Empty disables authentication.
	APISecret string
	TokenTTL  time.Duration

	LogLevel string
}

// Load reads configuration from environment variables, after loading any
// of the given .env files that exist (".env" when none are given).
// It does not validate; call Validate once logging is set up.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if os.IsNotExist(err) {
				slog.Debug("No env file found, using environment variables only", "file", f)
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
		slog.Debug("Environment loaded from file", "file", f)
	}

	cfg := &Config{
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		DBPath:       getEnv("DB_PATH", "./data/chatbook.db"),

		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		RedisNamespace: getEnv("REDIS_NAMESPACE", "chatbook:"),

		Port: getEnvAsInt("PORT", 8080),

		APISecret: getEnv("API_SECRET", ""),
		TokenTTL:  getEnvAsDuration("TOKEN_TTL", 30*24*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Validate checks the configuration and logs warnings for risky settings.
func (c *Config) Validate() error {
	var problems []string

	switch c.StoreBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			problems = append(problems, "DB_PATH is required for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisHost == "" || c.RedisPort == "" {
			problems = append(problems, "REDIS_HOST and REDIS_PORT are required for the redis backend")
		}
	case BackendMemory:
		slog.Warn("Using in-memory store, data will not survive a restart")
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT %d out of range", c.Port))
	}

	if c.APISecret != "" && len(c.APISecret) < 16 {
		problems = append(problems, "API_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	if c.APISecret == "" {
		slog.Warn("API_SECRET is not set, the local API accepts unauthenticated calls")
	}

	return nil
}

// RedisAddr returns the Redis address in the format host:port
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// Addr returns the listen address of the local API.
func (c *Config) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

// getEnv retrieves the value of the environment variable named by the key.
// If the variable is not present, the defaultValue is returned.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
