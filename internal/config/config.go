// Package config reads service settings from the environment, with
// optional .env file support.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings
type Config struct {
	Port string
	Env  string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StatsCacheTTL time.Duration

	ModelDir       string
	DatasetPath    string
	StrictFeatures bool

	LogLevel       string
	LogFormat      string
	BodyLimitBytes int
}

// Load reads .env (if present) and then the process environment.
// loadedEnvFile reports whether a .env file was found.
func Load() (cfg *Config, loadedEnvFile bool, err error) {
	loadedEnvFile = godotenv.Load() == nil
	cfg, err = FromEnv()
	return cfg, loadedEnvFile, err
}

// FromEnv builds and validates a Config from the process environment
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("GO_ENV", "development"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		ModelDir:      getEnv("MODEL_DIR", ""),
		DatasetPath:   getEnv("DATASET_PATH", ""),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil || cfg.RedisDB < 0 {
		return nil, fmt.Errorf("config: REDIS_DB must be a non-negative integer")
	}
	if cfg.StatsCacheTTL, err = time.ParseDuration(getEnv("STATS_CACHE_TTL", "10m")); err != nil || cfg.StatsCacheTTL <= 0 {
		return nil, fmt.Errorf("config: STATS_CACHE_TTL must be a positive duration such as 10m")
	}
	if cfg.StrictFeatures, err = strconv.ParseBool(getEnv("STRICT_FEATURES", "false")); err != nil {
		return nil, fmt.Errorf("config: STRICT_FEATURES must be true or false")
	}
	if cfg.BodyLimitBytes, err = strconv.Atoi(getEnv("BODY_LIMIT_BYTES", "65536")); err != nil || cfg.BodyLimitBytes <= 0 {
		return nil, fmt.Errorf("config: BODY_LIMIT_BYTES must be a positive integer")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("config: PORT %q is not a valid port", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: LOG_LEVEL %q must be one of debug, info, warn, error", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("config: LOG_FORMAT %q must be json or console", c.LogFormat)
	}
	return nil
}

// IsProduction reports whether GO_ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
