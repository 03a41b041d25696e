package config

import (
	"os"
	"strconv"
	"strings"
)

// Store drivers selectable via STORE_DRIVER
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	TablePrefix string
	CORSOrigins string

	// Storage
	StoreDriver string
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	SeedFixture string // YAML catalog loaded at startup by the memory driver

	// Auth; an empty JWKS URL serves every request anonymously
	AuthJWKSURL string

	// Entitlement
	BulkConcurrency int

	// Logging
	LogDir      string // empty disables the log file
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		TablePrefix: getTablePrefix(env),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  int32(getEnvInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getEnvInt("DB_MIN_CONNS", 5)),
		SeedFixture: getEnv("SEED_FIXTURE", ""),

		AuthJWKSURL: getEnv("AUTH_JWKS_URL", ""),

		BulkConcurrency: getEnvInt("BULK_CONCURRENCY", 8),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to the default on missing, malformed or non-positive values
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
