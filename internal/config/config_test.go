package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "tourscan",
		User:     "tourscan",
		Password: "secret",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=tourscan password=secret dbname=tourscan sslmode=disable",
		cfg.DSN())
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 300, cfg.Redis.TTLSeconds)
	assert.Equal(t, 60, cfg.Scraper.WindowSeconds)
	assert.Equal(t, 2, cfg.Scraper.Requests)
	assert.Equal(t, 5, cfg.Scraper.ScanMaxMinutes)
	assert.Equal(t, "random", cfg.Scraper.Rotation)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Address = ":9090"
	cfg.Scraper.Requests = 10
	applyDefaults(cfg)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 10, cfg.Scraper.Requests)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	require.Error(t, validate(cfg))

	cfg.Database.Host = "localhost"
	require.Error(t, validate(cfg))

	cfg.Database.Database = "tourscan"
	require.Error(t, validate(cfg))

	cfg.Database.User = "tourscan"
	assert.NoError(t, validate(cfg))
}

func TestExtractionAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg := &Config{}
	applyDefaults(cfg)
	assert.Equal(t, "sk-from-env", cfg.Extraction.APIKey)
}
