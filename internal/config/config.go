package config

import "fmt"

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   PostgresConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Scraper    ScraperConfig    `mapstructure:"scraper"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address    string `mapstructure:"address"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type ScraperConfig struct {
	WindowSeconds  int      `mapstructure:"window_seconds"`
	Requests       int      `mapstructure:"requests"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	MaxRetries     int      `mapstructure:"max_retries"`
	ScanMaxMinutes int      `mapstructure:"scan_max_minutes"`
	UserAgents     []string `mapstructure:"user_agents"`
	Rotation       string   `mapstructure:"rotation"`
}

type ExtractionConfig struct {
	APIKey   string `mapstructure:"api_key"`
	DemoMode bool   `mapstructure:"demo_mode"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
