package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds application configuration values.
type Config struct {
	Secret            string
	DatabaseDSN       string
	HTTPPort          string
	AllowRegistration bool
	AssetsDir         string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := envOr("DB_HOST", "localhost")
		user := envOr("DB_USER", "postgres")
		dbPort := envOr("DB_PORT", "5432")
		name := envOr("DB_NAME", "arelyshop")
		password := envOr("DB_PASSWORD", "postgres")
		dsn = "postgresql://" + user + ":" + password + "@" + host + ":" + dbPort + "/" + name + "?sslmode=disable"
	}

	assets := os.Getenv("ASSETS_DIR")
	if assets == "" {
		assets = "assets"
	}

	return Config{
		Secret:            secret,
		DatabaseDSN:       dsn,
		HTTPPort:          port,
		AllowRegistration: os.Getenv("ALLOW_REGISTRATION") == "true",
		AssetsDir:         assets,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
