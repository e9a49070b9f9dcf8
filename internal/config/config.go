package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is loaded once at startup and treated as immutable afterwards.
type Config struct {
	Port        string
	DatabaseURL string

	// SecretKey signs both access and refresh tokens.
	SecretKey  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// StaffDomain is the email domain granted access to privileged views.
	StaffDomain string

	PageSize int

	DBMaxOpen     int
	DBMaxIdle     int
	DBMaxLifetime time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Not an error: production deployments set real env vars.
		fmt.Fprintln(os.Stderr, "config: no .env file found")
	}

	cfg := &Config{
		Port:          getenv("PORT", "4000"),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		SecretKey:     getenv("SECRET_KEY", ""),
		StaffDomain:   getenv("STAFF_DOMAIN", "abc.com"),
		PageSize:      getint("PAGE_SIZE", 10),
		DBMaxOpen:     getint("DB_MAX_OPEN", 25),
		DBMaxIdle:     getint("DB_MAX_IDLE", 25),
		DBMaxLifetime: time.Duration(getint("DB_MAX_LIFETIME", 300)) * time.Second,
	}

	var err error
	if cfg.AccessTTL, err = getdur("ACCESS_TTL", 5*time.Minute); err != nil {
		return nil, fmt.Errorf("config: ACCESS_TTL: %w", err)
	}
	if cfg.RefreshTTL, err = getdur("REFRESH_TTL", 24*time.Hour); err != nil {
		return nil, fmt.Errorf("config: REFRESH_TTL: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("config: SECRET_KEY is required")
	}
	if cfg.PageSize < 1 {
		return nil, errors.New("config: PAGE_SIZE must be positive")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getdur(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
