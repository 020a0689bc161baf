package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads config.yaml (from ./configs or the working directory) merged
// with environment overrides such as DATABASE_HOST or REDIS_ADDRESS. A .env
// file next to the binary is honored when present.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so environment-only keys
	// must be bound explicitly.
	for _, key := range []string{
		"server.address",
		"database.host", "database.port", "database.database",
		"database.user", "database.password", "database.sslmode",
		"database.max_connections", "database.max_idle",
		"redis.address", "redis.password", "redis.db", "redis.ttl_seconds",
		"scraper.window_seconds", "scraper.requests", "scraper.timeout_seconds",
		"scraper.max_retries", "scraper.scan_max_minutes", "scraper.rotation",
		"extraction.api_key", "extraction.demo_mode",
		"logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConnections == 0 {
		cfg.Database.MaxConnections = 25
	}
	if cfg.Database.MaxIdle == 0 {
		cfg.Database.MaxIdle = 5
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.Redis.TTLSeconds == 0 {
		cfg.Redis.TTLSeconds = 300
	}

	if cfg.Scraper.WindowSeconds == 0 {
		cfg.Scraper.WindowSeconds = 60
	}
	if cfg.Scraper.Requests == 0 {
		cfg.Scraper.Requests = 2
	}
	if cfg.Scraper.TimeoutSeconds == 0 {
		cfg.Scraper.TimeoutSeconds = 20
	}
	if cfg.Scraper.MaxRetries == 0 {
		cfg.Scraper.MaxRetries = 2
	}
	if cfg.Scraper.ScanMaxMinutes == 0 {
		cfg.Scraper.ScanMaxMinutes = 5
	}
	if cfg.Scraper.Rotation == "" {
		cfg.Scraper.Rotation = "random"
	}

	if cfg.Extraction.APIKey == "" {
		cfg.Extraction.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if cfg.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	return nil
}
