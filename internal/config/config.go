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

// Config holds the diagram API configuration.
type Config struct {
	Port        int
	DatabaseURL string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SchemaCacheTTL time.Duration

	SchemaGeneratorURL string
	GeneratorTimeout   time.Duration

	// APIToken and JWTSecret, when set, guard /api/v1 with bearer tokens.
	APIToken    string
	JWTSecret   string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (silently ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		RedisAddr:          getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		SchemaGeneratorURL: strings.TrimRight(os.Getenv("SCHEMA_GENERATOR_URL"), "/"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFormat:          getenv("LOG_FORMAT", "text"),
		APIToken:           os.Getenv("API_TOKEN"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
	}

	var err error
	if cfg.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SchemaCacheTTL, err = durationEnv("SCHEMA_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.GeneratorTimeout, err = durationEnv("SCHEMA_GENERATOR_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = durationEnv("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = durationEnv("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL, err = databaseURL(); err != nil {
		return nil, err
	}
	if cfg.SchemaGeneratorURL == "" {
		return nil, fmt.Errorf("SCHEMA_GENERATOR_URL environment variable is required")
	}

	for _, origin := range strings.Split(getenv("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL and otherwise builds one from the DB_* variables.
func databaseURL() (string, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		if _, err := url.Parse(dsn); err != nil {
			return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		return dsn, nil
	}

	required := []string{"DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_DATABASE"}
	values := make(map[string]string, len(required))
	for _, key := range required {
		v := os.Getenv(key)
		if v == "" {
			return "", fmt.Errorf("DATABASE_URL or %s environment variable is required", key)
		}
		values[key] = v
	}

	// url.UserPassword encodes special characters in the credentials
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(values["DB_USERNAME"], values["DB_PASSWORD"]),
		Host:     values["DB_HOST"] + ":" + values["DB_PORT"],
		Path:     "/" + values["DB_DATABASE"],
		RawQuery: "sslmode=" + getenv("DB_SSLMODE", "disable"),
	}
	return u.String(), nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}
