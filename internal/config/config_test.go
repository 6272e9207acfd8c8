package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("CLICKHOUSE_DSN", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "prices")
	t.Setenv("CLICKHOUSE_DSN", "clickhouse://localhost:9000/prices")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("unexpected MongoURI %q", cfg.MongoURI)
	}
	if cfg.MongoDatabase != "prices" {
		t.Errorf("unexpected MongoDatabase %q", cfg.MongoDatabase)
	}
	if cfg.ClickHouseDSN != "clickhouse://localhost:9000/prices" {
		t.Errorf("unexpected ClickHouseDSN %q", cfg.ClickHouseDSN)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("unexpected LogLevel %q", cfg.LogLevel)
	}
}

func TestRequireMongo(t *testing.T) {
	cfg := Config{}
	if err := cfg.RequireMongo(); err == nil {
		t.Error("expected an error without a Mongo URI")
	}

	cfg.MongoURI = "mongodb://localhost:27017"
	if err := cfg.RequireMongo(); err == nil {
		t.Error("expected an error without a database name")
	}

	cfg.MongoDatabase = "prices"
	if err := cfg.RequireMongo(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireClickHouse(t *testing.T) {
	cfg := Config{}
	if err := cfg.RequireClickHouse(); err == nil {
		t.Error("expected an error without a ClickHouse DSN")
	}

	cfg.ClickHouseDSN = "clickhouse://localhost:9000/prices"
	if err := cfg.RequireClickHouse(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
