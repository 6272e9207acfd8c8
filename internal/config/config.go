// Package config resolves environment-sourced settings into an explicit
// struct passed to constructors. Nothing reads the process environment
// outside of Load.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the store endpoints for one invocation.
type Config struct {
	MongoURI      string // MONGODB_URI
	MongoDatabase string // DB_NAME
	ClickHouseDSN string // CLICKHOUSE_DSN
	LogLevel      string // LOG_LEVEL, defaults to info
}

// Load reads .env when present, then the process environment.
func Load() Config {
	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	cfg := Config{
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: os.Getenv("DB_NAME"),
		ClickHouseDSN: os.Getenv("CLICKHOUSE_DSN"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg
}

// RequireMongo validates that the Mongo settings are present.
func (c Config) RequireMongo() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is not set")
	}
	if c.MongoDatabase == "" {
		return fmt.Errorf("DB_NAME is not set")
	}
	return nil
}

// RequireClickHouse validates that the ClickHouse DSN is present.
func (c Config) RequireClickHouse() error {
	if c.ClickHouseDSN == "" {
		return fmt.Errorf("CLICKHOUSE_DSN is not set")
	}
	return nil
}
