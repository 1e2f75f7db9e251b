// Package config sources runtime configuration from environment
// variables, with a .env file loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting for the server process.
type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	CardPrefix string
	CardLength int

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
}

// Load reads configuration from the environment, applying defaults for
// anything unset. A .env file in the working directory is honored.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: fallback(os.Getenv("SERVER_PORT"), "8080"),

		DBHost:     fallback(os.Getenv("DB_HOST"), "localhost"),
		DBPort:     fallback(os.Getenv("DB_PORT"), "5432"),
		DBUser:     fallback(os.Getenv("DB_USER"), "postgres"),
		DBPassword: fallback(os.Getenv("DB_PASSWORD"), "password"),
		DBName:     fallback(os.Getenv("DB_NAME"), "card_ledger"),
		DBSSLMode:  fallback(os.Getenv("DB_SSLMODE"), "disable"),

		CardPrefix: fallback(os.Getenv("CARD_PREFIX"), "4"),
		CardLength: intFallback(os.Getenv("CARD_LENGTH"), 16),

		JWTSecret: fallback(os.Getenv("JWT_SECRET"), "dev-secret-change-me"),
		JWTIssuer: fallback(os.Getenv("JWT_ISSUER"), "card-ledger"),
		JWTTTL:    time.Duration(intFallback(os.Getenv("JWT_TTL_MINUTES"), 60)) * time.Minute,
	}

	return cfg
}

// GetDBConnectionString builds the lib/pq connection string.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func intFallback(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}
